package rpcapi

// StorageServiceName is the net/rpc service name a Storage Node registers
// its methods under (net/rpc dispatches "<ServiceName>.<Method>"). The
// method names below follow the "Barrel" glossary term from the original
// source to keep RPC args/reply types distinct from the Dispatcher's.

const StorageServiceName = "StorageService"

// BarrelSearchArgs carries the already lower-cased, whitespace-split query terms.
type BarrelSearchArgs struct {
	Terms []string
}

// BarrelSearchReply carries the unordered (pre-sort) set of matches.
type BarrelSearchReply struct {
	Results []SearchResult
}

// UpdateIndexArgs carries one crawled page's contribution to the index.
type UpdateIndexArgs struct {
	URL           string
	Title         string
	Snippet       string
	Terms         []string // lower-cased, set semantics (duplicates ignored)
	OutgoingLinks []string // set semantics
}

// UpdateIndexReply is an empty acknowledgement.
type UpdateIndexReply struct{}

// BarrelGetBacklinksArgs carries the target URL whose inbound links are requested.
type BarrelGetBacklinksArgs struct {
	URL string
}

// BarrelGetBacklinksReply carries the (duplicate-free, unordered) source URLs.
type BarrelGetBacklinksReply struct {
	URLs []string
}

// GetBarrelStatsArgs is empty; net/rpc still requires an argument value.
type GetBarrelStatsArgs struct{}

// GetBarrelStatsReply carries the human-readable stats line for this node.
type GetBarrelStatsReply struct {
	Stats string
}

// GetInvertedIndexArgs is empty.
type GetInvertedIndexArgs struct{}

// GetInvertedIndexReply carries a full copy of the term -> URL-set map, used
// only during peer-to-peer startup sync.
type GetInvertedIndexReply struct {
	Index map[string][]string
}

// GetBacklinksMapArgs is empty.
type GetBacklinksMapArgs struct{}

// GetBacklinksMapReply carries a full copy of the backlink map.
type GetBacklinksMapReply struct {
	Backlinks map[string][]string
}

// GetPageInfoMapArgs is empty.
type GetPageInfoMapArgs struct{}

// GetPageInfoMapReply carries a full copy of the per-URL metadata map.
type GetPageInfoMapReply struct {
	PageInfo map[string]PageRecord
}

// BackupURLQueueArgs carries the snapshot to persist as this node's replica
// of the Dispatcher's queue state.
type BackupURLQueueArgs struct {
	Snapshot URLQueueSnapshot
}

// BackupURLQueueReply is an empty acknowledgement.
type BackupURLQueueReply struct{}

// RestoreURLQueueArgs is empty.
type RestoreURLQueueArgs struct{}

// RestoreURLQueueReply carries the last known queue snapshot, possibly
// empty if this node never received or persisted one.
type RestoreURLQueueReply struct {
	Snapshot URLQueueSnapshot
}
