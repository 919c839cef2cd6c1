package storagenode

import "github.com/googol-project/googol/rpcapi"

// Service adapts a Node to the net/rpc calling convention, translating
// rpcapi Args/Reply structs to Node method calls. Registered under
// rpcapi.StorageServiceName.
type Service struct {
	node *Node
}

// NewService wraps node for net/rpc registration.
func NewService(node *Node) *Service {
	return &Service{node: node}
}

func (s *Service) Search(args *rpcapi.BarrelSearchArgs, reply *rpcapi.BarrelSearchReply) error {
	reply.Results = s.node.Search(args.Terms)
	return nil
}

func (s *Service) UpdateIndex(args *rpcapi.UpdateIndexArgs, reply *rpcapi.UpdateIndexReply) error {
	s.node.UpdateIndex(args.URL, args.Title, args.Snippet, args.Terms, args.OutgoingLinks)
	return nil
}

func (s *Service) GetBacklinks(args *rpcapi.BarrelGetBacklinksArgs, reply *rpcapi.BarrelGetBacklinksReply) error {
	reply.URLs = s.node.GetBacklinks(args.URL)
	return nil
}

func (s *Service) GetBarrelStats(args *rpcapi.GetBarrelStatsArgs, reply *rpcapi.GetBarrelStatsReply) error {
	reply.Stats = s.node.BarrelStats()
	return nil
}

func (s *Service) GetInvertedIndex(args *rpcapi.GetInvertedIndexArgs, reply *rpcapi.GetInvertedIndexReply) error {
	reply.Index = s.node.InvertedIndexCopy()
	return nil
}

func (s *Service) GetBacklinksMap(args *rpcapi.GetBacklinksMapArgs, reply *rpcapi.GetBacklinksMapReply) error {
	reply.Backlinks = s.node.BacklinksCopy()
	return nil
}

func (s *Service) GetPageInfoMap(args *rpcapi.GetPageInfoMapArgs, reply *rpcapi.GetPageInfoMapReply) error {
	reply.PageInfo = s.node.PageInfoCopy()
	return nil
}

func (s *Service) BackupURLQueue(args *rpcapi.BackupURLQueueArgs, reply *rpcapi.BackupURLQueueReply) error {
	return s.node.BackupURLQueue(args.Snapshot)
}

func (s *Service) RestoreURLQueue(args *rpcapi.RestoreURLQueueArgs, reply *rpcapi.RestoreURLQueueReply) error {
	reply.Snapshot = s.node.RestoreURLQueue()
	return nil
}
