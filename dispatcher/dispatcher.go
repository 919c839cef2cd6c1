// Package dispatcher implements the central coordinator: the URL queue and
// visited set, round-robin+failover search/backlink routing over the
// Storage Node replicas, statistics aggregation, and callback fan-out.
package dispatcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/googol-project/googol/internal/config"
	"github.com/googol-project/googol/storagenode"
)

const indexedURLLogName = "indexed_urls.log"

// PeerResolver maps a configured replica name to its current dial address,
// matching the Storage Node package's own resolver shape.
type PeerResolver func(name string) (addr string, found bool, err error)

type replicaEntry struct {
	name   string
	client *storagenode.Client
}

// Dispatcher is the Go analogue of the original source's Gateway: the
// single process every Crawler Worker and search client talks to.
type Dispatcher struct {
	cfg     *config.Config
	logger  *log.Logger
	dataDir string
	resolver PeerResolver

	configuredNames []string

	mu      sync.Mutex
	pending []string
	visited map[string]struct{}

	replicasMu  sync.RWMutex
	replicas    []replicaEntry
	nextReplica uint64

	statsMu       sync.Mutex
	topSearches   map[string]int
	respTimeTotal map[string]int64 // units of 100 microseconds
	respCount     map[string]int64

	callbacksMu sync.Mutex
	callbacks   map[string]string // sessionID -> callback dial address

	digestMu   sync.Mutex
	lastDigest string

	dirty atomic.Bool

	logMu   sync.Mutex
	logFile *os.File
}

// New returns a Dispatcher with an empty queue and no connected replicas;
// callers should follow up with ReconnectReplicas (or RecoverQueue, which
// does both) before serving traffic.
func New(cfg *config.Config, dataDir string, logger *log.Logger, resolver PeerResolver) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}

	names := make([]string, cfg.Barrels.Count)
	for i := 0; i < cfg.Barrels.Count; i++ {
		names[i] = cfg.Barrels.Name(i)
	}

	return &Dispatcher{
		cfg:             cfg,
		logger:          logger,
		dataDir:         dataDir,
		resolver:        resolver,
		configuredNames: names,
		visited:         make(map[string]struct{}),
		topSearches:     make(map[string]int),
		respTimeTotal:   make(map[string]int64),
		respCount:       make(map[string]int64),
		callbacks:       make(map[string]string),
	}
}

func (d *Dispatcher) markDirty() {
	d.dirty.Store(true)
}

// SubmitURL adds url to the queue if it hasn't been seen before. Dedup is
// check-and-insert under the same lock, so concurrent submitURL calls for
// the same URL never both succeed.
func (d *Dispatcher) SubmitURL(url string) error {
	d.mu.Lock()
	_, seen := d.visited[url]
	if !seen {
		d.visited[url] = struct{}{}
		d.pending = append(d.pending, url)
	}
	d.mu.Unlock()

	if seen {
		return nil
	}

	if err := d.appendIndexedURLLog(url); err != nil {
		d.logger.Printf("dispatcher: failed to log indexed url %s: %v", url, err)
	}

	d.markDirty()
	go d.snapshotQueueToReplicas()
	return nil
}

// NextURLToCrawl pops the head of the pending queue, or reports empty.
func (d *Dispatcher) NextURLToCrawl() (url string, ok bool) {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return "", false
	}
	url = d.pending[0]
	d.pending = d.pending[1:]
	d.mu.Unlock()

	d.markDirty()
	go d.snapshotQueueToReplicas()
	return url, true
}

func (d *Dispatcher) queueSnapshotLocked() (pending []string, visited []string) {
	pending = append([]string(nil), d.pending...)
	visited = make([]string, 0, len(d.visited))
	for u := range d.visited {
		visited = append(visited, u)
	}
	return pending, visited
}

func splitQuery(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	return fields
}

func (d *Dispatcher) openLogFile() (*os.File, error) {
	d.logMu.Lock()
	defer d.logMu.Unlock()

	if d.logFile != nil {
		return d.logFile, nil
	}
	if err := os.MkdirAll(d.dataDir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(d.dataDir, indexedURLLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	d.logFile = f
	return f, nil
}

func (d *Dispatcher) appendIndexedURLLog(url string) error {
	f, err := d.openLogFile()
	if err != nil {
		return err
	}

	d.logMu.Lock()
	defer d.logMu.Unlock()
	_, err = fmt.Fprintln(f, url)
	return err
}
