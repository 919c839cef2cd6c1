package dispatcher

import "github.com/googol-project/googol/rpcapi"

// Service adapts a Dispatcher to the net/rpc calling convention. Registered
// under rpcapi.DispatcherServiceName.
type Service struct {
	d *Dispatcher
}

// NewService wraps d for net/rpc registration.
func NewService(d *Dispatcher) *Service {
	return &Service{d: d}
}

func (s *Service) SubmitURL(args *rpcapi.SubmitURLArgs, reply *rpcapi.SubmitURLReply) error {
	return s.d.SubmitURL(args.URL)
}

func (s *Service) Search(args *rpcapi.SearchArgs, reply *rpcapi.SearchReply) error {
	results, err := s.d.Search(args.Query)
	if err != nil {
		return err
	}
	reply.Results = results
	return nil
}

func (s *Service) GetBacklinks(args *rpcapi.GetBacklinksArgs, reply *rpcapi.GetBacklinksReply) error {
	urls, err := s.d.GetBacklinks(args.URL)
	if err != nil {
		return err
	}
	reply.URLs = urls
	return nil
}

func (s *Service) GetStatistics(args *rpcapi.GetStatisticsArgs, reply *rpcapi.GetStatisticsReply) error {
	reply.Digest = s.d.BuildDigest()
	return nil
}

func (s *Service) NextURLToCrawl(args *rpcapi.NextURLToCrawlArgs, reply *rpcapi.NextURLToCrawlReply) error {
	url, ok := s.d.NextURLToCrawl()
	reply.URL = url
	reply.Empty = !ok
	return nil
}

func (s *Service) SubscribeStats(args *rpcapi.SubscribeStatsArgs, reply *rpcapi.SubscribeStatsReply) error {
	s.d.SubscribeStats(args.SessionID, args.CallbackAddr)
	return nil
}

func (s *Service) UnsubscribeStats(args *rpcapi.UnsubscribeStatsArgs, reply *rpcapi.UnsubscribeStatsReply) error {
	s.d.UnsubscribeStats(args.SessionID)
	return nil
}
