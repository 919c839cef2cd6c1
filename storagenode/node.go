// Package storagenode implements the "Barrel": a replicated holder of the
// inverted index, backlink map, and per-URL page metadata, accelerated by a
// Bloom filter for conjunctive term search. Each process embeds one Node,
// exported over net/rpc by service.go.
package storagenode

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/googol-project/googol/bloom"
	"github.com/googol-project/googol/internal/config"
	"github.com/googol-project/googol/rpcapi"
)

// State is one of the node's lifecycle phases (§4.1 of the spec).
type State int

const (
	StateStarting State = iota
	StateSyncing
	StateReady
	StateSnapshotting
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "Starting"
	case StateSyncing:
		return "Syncing"
	case StateReady:
		return "Ready"
	case StateSnapshotting:
		return "Snapshotting"
	default:
		return "Unknown"
	}
}

// Node is a single Storage Node's in-memory state.
type Node struct {
	Name      string // registry name, e.g. "barrel0"
	Index     int    // configured position; 0 is primary
	IsPrimary bool

	mu        sync.RWMutex
	index     map[string]map[string]struct{} // term -> URL set
	backlinks map[string]map[string]struct{} // target URL -> source URL set
	pageInfo  map[string]rpcapi.PageRecord
	filter    *bloom.Filter

	queueMu  sync.Mutex
	queue    rpcapi.URLQueueSnapshot
	dataDir  string

	stateMu sync.RWMutex
	state   State

	cfg    *config.Config
	logger *log.Logger
}

// New returns an empty Node, sized per cfg.Bloom.
func New(name string, index int, cfg *config.Config, dataDir string, logger *log.Logger) *Node {
	if logger == nil {
		logger = log.Default()
	}
	return &Node{
		Name:      name,
		Index:     index,
		IsPrimary: index == 0,
		index:     make(map[string]map[string]struct{}),
		backlinks: make(map[string]map[string]struct{}),
		pageInfo:  make(map[string]rpcapi.PageRecord),
		filter:    bloom.New(cfg.Bloom.ExpectedElements, cfg.Bloom.FalsePositiveRate),
		dataDir:   dataDir,
		state:     StateStarting,
		cfg:       cfg,
		logger:    logger,
	}
}

// State returns the node's current lifecycle phase.
func (n *Node) State() State {
	n.stateMu.RLock()
	defer n.stateMu.RUnlock()
	return n.state
}

func (n *Node) setState(s State) {
	n.stateMu.Lock()
	n.state = s
	n.stateMu.Unlock()
}

// Search implements the conjunctive-AND algorithm of §4.1: a Bloom-filter
// short-circuit, then a set intersection over the inverted index, then
// relevance = backlink count per surviving URL.
func (n *Node) Search(terms []string) []rpcapi.SearchResult {
	if len(terms) == 0 {
		return nil
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, t := range terms {
		if !n.filter.MightContain(t) {
			return nil
		}
	}

	matched, ok := n.index[terms[0]]
	if !ok || len(matched) == 0 {
		return nil
	}

	candidates := make(map[string]struct{}, len(matched))
	for u := range matched {
		candidates[u] = struct{}{}
	}

	for _, t := range terms[1:] {
		set, ok := n.index[t]
		if !ok || len(set) == 0 {
			return nil
		}
		for u := range candidates {
			if _, present := set[u]; !present {
				delete(candidates, u)
			}
		}
		if len(candidates) == 0 {
			return nil
		}
	}

	results := make([]rpcapi.SearchResult, 0, len(candidates))
	for u := range candidates {
		info := n.pageInfo[u]
		results = append(results, rpcapi.SearchResult{
			URL:       u,
			Title:     info.Title,
			Snippet:   info.Snippet,
			Relevance: len(n.backlinks[u]),
		})
	}
	return results
}

// UpdateIndex applies one crawled page's contribution. Idempotent: applying
// the same (url, title, snippet, terms, outgoing) twice leaves the index and
// backlink map unchanged on the second call.
func (n *Node) UpdateIndex(url, title, snippet string, terms, outgoingLinks []string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.pageInfo[url] = rpcapi.PageRecord{Title: title, Snippet: snippet}

	for _, term := range terms {
		n.filter.Add(term)
		set, ok := n.index[term]
		if !ok {
			set = make(map[string]struct{})
			n.index[term] = set
		}
		set[url] = struct{}{}
	}

	for _, link := range outgoingLinks {
		set, ok := n.backlinks[link]
		if !ok {
			set = make(map[string]struct{})
			n.backlinks[link] = set
		}
		set[url] = struct{}{}
	}
}

// GetBacklinks returns the (duplicate-free, unordered) sources linking to url.
func (n *Node) GetBacklinks(url string) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	set := n.backlinks[url]
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	return out
}

// BarrelStats renders the human-readable line used by getBarrelStats and the
// Dispatcher's statistics digest.
func (n *Node) BarrelStats() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	wordCount := len(n.index)
	urlSet := make(map[string]struct{})
	for _, set := range n.index {
		for u := range set {
			urlSet[u] = struct{}{}
		}
	}

	return fmt.Sprintf(
		"Index: %d words, %d URLs. BloomFilter[m=%d,k=%d,set=%d,occ=%.2f%%]",
		wordCount, len(urlSet),
		n.filter.Size(), n.filter.NumHashFunctions(), n.filter.Cardinality(), n.filter.OccupancyRate()*100,
	)
}

// InvertedIndexCopy returns a full, independent copy of the term -> URL-set
// map, for peer sync and disk snapshotting.
func (n *Node) InvertedIndexCopy() map[string][]string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make(map[string][]string, len(n.index))
	for term, set := range n.index {
		urls := make([]string, 0, len(set))
		for u := range set {
			urls = append(urls, u)
		}
		sort.Strings(urls)
		out[term] = urls
	}
	return out
}

// BacklinksCopy returns a full, independent copy of the backlink map.
func (n *Node) BacklinksCopy() map[string][]string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make(map[string][]string, len(n.backlinks))
	for target, set := range n.backlinks {
		sources := make([]string, 0, len(set))
		for u := range set {
			sources = append(sources, u)
		}
		sort.Strings(sources)
		out[target] = sources
	}
	return out
}

// PageInfoCopy returns a full, independent copy of the per-URL metadata map.
func (n *Node) PageInfoCopy() map[string]rpcapi.PageRecord {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make(map[string]rpcapi.PageRecord, len(n.pageInfo))
	for u, rec := range n.pageInfo {
		out[u] = rec
	}
	return out
}

// PutAll bulk-merges externally-sourced index/backlink/pageInfo state (from
// a peer sync or a disk snapshot) into this node, then rebuilds the Bloom
// filter from the resulting index key set. Per §9, the Bloom filter is
// always rebuilt rather than deserialized; neither peer sync nor the disk
// snapshot carries one.
func (n *Node) PutAll(index, backlinks map[string][]string, pageInfo map[string]rpcapi.PageRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for term, urls := range index {
		set, ok := n.index[term]
		if !ok {
			set = make(map[string]struct{}, len(urls))
			n.index[term] = set
		}
		for _, u := range urls {
			set[u] = struct{}{}
		}
	}

	for target, sources := range backlinks {
		set, ok := n.backlinks[target]
		if !ok {
			set = make(map[string]struct{}, len(sources))
			n.backlinks[target] = set
		}
		for _, u := range sources {
			set[u] = struct{}{}
		}
	}

	for u, rec := range pageInfo {
		n.pageInfo[u] = rec
	}

	n.rebuildBloomLocked()
}

func (n *Node) rebuildBloomLocked() {
	filter := bloom.New(n.cfg.Bloom.ExpectedElements, n.cfg.Bloom.FalsePositiveRate)
	for term := range n.index {
		filter.Add(term)
	}
	n.filter = filter
}
