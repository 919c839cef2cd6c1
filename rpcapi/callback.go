package rpcapi

// StatsSubscriberServiceName is the net/rpc service name a stats subscriber
// exposes on its own tiny server so the Dispatcher can call back into it.
// This is the Go stand-in for a CallbackRef: the Dispatcher dials this
// service at the address given in SubscribeStatsArgs.CallbackAddr.
const StatsSubscriberServiceName = "StatsSubscriber"

// OnStatisticsUpdateArgs carries the freshly rendered digest.
type OnStatisticsUpdateArgs struct {
	Digest string
}

// OnStatisticsUpdateReply is an empty acknowledgement.
type OnStatisticsUpdateReply struct{}
