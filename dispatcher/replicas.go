package dispatcher

import (
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/googol-project/googol/rpcapi"
	"github.com/googol-project/googol/storagenode"
)

func (d *Dispatcher) replicaSnapshot() []replicaEntry {
	d.replicasMu.RLock()
	defer d.replicasMu.RUnlock()

	out := make([]replicaEntry, len(d.replicas))
	copy(out, d.replicas)
	return out
}

func (d *Dispatcher) dropReplica(name string) {
	d.replicasMu.Lock()
	defer d.replicasMu.Unlock()

	filtered := d.replicas[:0:0]
	for _, r := range d.replicas {
		if r.name != name {
			filtered = append(filtered, r)
		}
	}
	d.replicas = filtered
}

func (d *Dispatcher) nextIndex(n int) int {
	if n <= 0 {
		return 0
	}
	v := atomic.AddUint64(&d.nextReplica, 1)
	return int(v % uint64(n))
}

// ReconnectReplicas re-resolves every configured replica name and rebuilds
// the live client list from whatever answers. Called whenever the live
// list runs dry, and safe to call redundantly.
func (d *Dispatcher) ReconnectReplicas() {
	fresh := make([]replicaEntry, 0, len(d.configuredNames))
	for _, name := range d.configuredNames {
		addr, found, err := d.resolver(name)
		if err != nil || !found {
			continue
		}
		fresh = append(fresh, replicaEntry{name: name, client: storagenode.NewClient(addr)})
	}

	d.replicasMu.Lock()
	d.replicas = fresh
	d.replicasMu.Unlock()
}

func (d *Dispatcher) ensureReplicas() []replicaEntry {
	replicas := d.replicaSnapshot()
	if len(replicas) == 0 {
		d.ReconnectReplicas()
		replicas = d.replicaSnapshot()
	}
	return replicas
}

// Search routes query to a Storage Node replica via round-robin+failover,
// sorts the result by relevance descending, and records the "top searches"
// and per-replica response-time statistics.
func (d *Dispatcher) Search(query string) ([]rpcapi.SearchResult, error) {
	terms := splitQuery(query)
	if len(terms) == 0 {
		return nil, nil
	}
	d.recordSearchTerm(query)
	d.markDirty()

	replicas := d.ensureReplicas()
	if len(replicas) == 0 {
		return nil, rpcapi.ErrNoReplicas
	}

	n := len(replicas)
	for attempt := 0; attempt < n; attempt++ {
		entry := replicas[d.nextIndex(n)]

		start := time.Now()
		results, err := entry.client.Search(terms)
		if err != nil {
			d.dropReplica(entry.name)
			continue
		}

		d.recordResponseTime(entry.name, time.Since(start))
		sort.Slice(results, func(i, j int) bool { return results[i].Relevance > results[j].Relevance })
		return results, nil
	}

	return nil, rpcapi.ErrNoReplicas
}

// GetBacklinks routes to a replica the same way Search does, without
// touching the search-term or response-time statistics.
func (d *Dispatcher) GetBacklinks(url string) ([]string, error) {
	replicas := d.ensureReplicas()
	if len(replicas) == 0 {
		return nil, rpcapi.ErrNoReplicas
	}

	n := len(replicas)
	for attempt := 0; attempt < n; attempt++ {
		entry := replicas[d.nextIndex(n)]

		urls, err := entry.client.GetBacklinks(url)
		if err != nil {
			d.dropReplica(entry.name)
			continue
		}
		return urls, nil
	}

	return nil, rpcapi.ErrNoReplicas
}

func (d *Dispatcher) recordSearchTerm(query string) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return
	}
	d.statsMu.Lock()
	d.topSearches[key]++
	d.statsMu.Unlock()
}

// recordResponseTime stores elapsed in units of 100 microseconds, matching
// the original source's "deci-second" display units.
func (d *Dispatcher) recordResponseTime(replicaName string, elapsed time.Duration) {
	units := int64(elapsed / (100 * time.Microsecond))

	d.statsMu.Lock()
	d.respTimeTotal[replicaName] += units
	d.respCount[replicaName]++
	d.statsMu.Unlock()
}

// snapshotQueueToReplicas fans out the current {pending, visited} to every
// known replica, best-effort; a replica that fails the delivery is dropped
// (it will be picked back up by the next reconnect pass).
func (d *Dispatcher) snapshotQueueToReplicas() {
	d.mu.Lock()
	pending, visited := d.queueSnapshotLocked()
	d.mu.Unlock()

	snapshot := rpcapi.URLQueueSnapshot{Pending: pending, Visited: visited}

	for _, entry := range d.replicaSnapshot() {
		if err := entry.client.BackupURLQueue(snapshot); err != nil {
			d.dropReplica(entry.name)
		}
	}
}
