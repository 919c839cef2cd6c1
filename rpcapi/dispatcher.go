package rpcapi

// DispatcherServiceName is the net/rpc service name the Dispatcher registers
// its methods under.
const DispatcherServiceName = "DispatcherService"

// SubmitURLArgs carries a newly discovered URL.
type SubmitURLArgs struct {
	URL string
}

// SubmitURLReply is an empty acknowledgement; duplicate submissions are
// silently dropped rather than erroring.
type SubmitURLReply struct{}

// SearchArgs carries the raw (not yet split/lower-cased) query string.
type SearchArgs struct {
	Query string
}

// SearchReply carries the relevance-sorted result list.
type SearchReply struct {
	Results []SearchResult
}

// GetBacklinksArgs carries the URL whose backlinks are requested.
type GetBacklinksArgs struct {
	URL string
}

// GetBacklinksReply carries the source URLs linking to the target.
type GetBacklinksReply struct {
	URLs []string
}

// GetStatisticsArgs is empty.
type GetStatisticsArgs struct{}

// GetStatisticsReply carries the rendered statistics digest.
type GetStatisticsReply struct {
	Digest string
}

// NextURLToCrawlArgs is empty.
type NextURLToCrawlArgs struct{}

// NextURLToCrawlReply carries the next pending URL, or Empty=true if the
// queue had nothing to hand out.
type NextURLToCrawlReply struct {
	URL   string
	Empty bool
}

// SubscribeStatsArgs carries the dial target of the subscriber's own tiny
// net/rpc server (its StatsSubscriber.OnStatisticsUpdate endpoint), acting
// as the opaque CallbackRef handle.
type SubscribeStatsArgs struct {
	CallbackAddr string // host:port
	SessionID    string // opaque handle, stable per subscription
}

// SubscribeStatsReply is an empty acknowledgement.
type SubscribeStatsReply struct{}

// UnsubscribeStatsArgs identifies the subscription to remove.
type UnsubscribeStatsArgs struct {
	SessionID string
}

// UnsubscribeStatsReply is an empty acknowledgement.
type UnsubscribeStatsReply struct{}
