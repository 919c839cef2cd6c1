package dispatcher

import (
	"fmt"
	"net/rpc"
	"sort"
	"strings"
	"time"

	"github.com/googol-project/googol/rpcapi"
)

type searchCount struct {
	query string
	count int
}

// BuildDigest renders the full statistics report in the stable,
// newline-terminated format every client display depends on.
func (d *Dispatcher) BuildDigest() string {
	var b strings.Builder

	b.WriteString("== Statistics ==\n\n")

	b.WriteString("-- Top 10 Searches --\n")
	for _, sc := range d.topSearchesSorted() {
		fmt.Fprintf(&b, "'%s': %d searches\n", sc.query, sc.count)
	}
	b.WriteString("\n")

	b.WriteString("-- Active Replicas --\n")
	for _, name := range d.configuredNames {
		fmt.Fprintf(&b, "[%s] %s\n", name, d.replicaStatsLine(name))
	}
	b.WriteString("\n")

	b.WriteString("-- Mean Response (100-µs units) --\n")
	for _, name := range d.configuredNames {
		total, count := d.responseTotals(name)
		avg := int64(0)
		if count > 0 {
			avg = total / count
		}
		fmt.Fprintf(&b, "[%s] Mean: %d (total: %d, searches: %d)\n", name, avg, total, count)
	}

	return b.String()
}

func (d *Dispatcher) topSearchesSorted() []searchCount {
	d.statsMu.Lock()
	entries := make([]searchCount, 0, len(d.topSearches))
	for q, c := range d.topSearches {
		entries = append(entries, searchCount{query: q, count: c})
	}
	d.statsMu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].query < entries[j].query
	})
	if len(entries) > 10 {
		entries = entries[:10]
	}
	return entries
}

func (d *Dispatcher) responseTotals(name string) (total, count int64) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.respTimeTotal[name], d.respCount[name]
}

// replicaStatsLine calls getBarrelStats on the named replica if it is
// currently live; an unreachable or never-(re)connected replica reports
// "Inaccessible." without attempting a fresh dial.
func (d *Dispatcher) replicaStatsLine(name string) string {
	for _, entry := range d.replicaSnapshot() {
		if entry.name != name {
			continue
		}
		stats, err := entry.client.GetBarrelStats()
		if err != nil {
			d.dropReplica(name)
			return "Inaccessible."
		}
		return stats
	}
	return "Inaccessible."
}

// SubscribeStats registers a callback subscriber keyed by sessionID and
// immediately delivers the current digest; a failed initial delivery
// removes the subscription rather than leaving a dead entry behind.
func (d *Dispatcher) SubscribeStats(sessionID, callbackAddr string) {
	d.callbacksMu.Lock()
	d.callbacks[sessionID] = callbackAddr
	d.callbacksMu.Unlock()
	d.markDirty()

	digest := d.currentOrFreshDigest()
	if err := deliverStatsCallback(callbackAddr, digest); err != nil {
		d.callbacksMu.Lock()
		delete(d.callbacks, sessionID)
		d.callbacksMu.Unlock()
	}
}

// UnsubscribeStats removes sessionID's subscription; idempotent.
func (d *Dispatcher) UnsubscribeStats(sessionID string) {
	d.callbacksMu.Lock()
	delete(d.callbacks, sessionID)
	d.callbacksMu.Unlock()
}

func (d *Dispatcher) currentOrFreshDigest() string {
	d.digestMu.Lock()
	defer d.digestMu.Unlock()

	if d.lastDigest == "" {
		d.lastDigest = d.BuildDigest()
	}
	return d.lastDigest
}

func deliverStatsCallback(addr, digest string) error {
	conn, err := rpc.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	defer conn.Close()

	var reply rpcapi.OnStatisticsUpdateReply
	if err := conn.Call(rpcapi.StatsSubscriberServiceName+".OnStatisticsUpdate", &rpcapi.OnStatisticsUpdateArgs{Digest: digest}, &reply); err != nil {
		return fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return nil
}

// StartStatsPush runs the periodic stats-dirty check: every interval, if
// the digest changed since the last push and at least one subscriber
// exists, it rebuilds and delivers sequentially, dropping any subscriber
// whose delivery fails.
func (d *Dispatcher) StartStatsPush(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.pushIfDirty()
		}
	}
}

func (d *Dispatcher) pushIfDirty() {
	if !d.dirty.Load() {
		return
	}

	d.callbacksMu.Lock()
	subscribers := make(map[string]string, len(d.callbacks))
	for id, addr := range d.callbacks {
		subscribers[id] = addr
	}
	d.callbacksMu.Unlock()

	if len(subscribers) == 0 {
		d.dirty.Store(false)
		return
	}

	digest := d.BuildDigest()

	d.digestMu.Lock()
	changed := digest != d.lastDigest
	if changed {
		d.lastDigest = digest
	}
	d.digestMu.Unlock()

	d.dirty.Store(false)
	if !changed {
		return
	}

	for id, addr := range subscribers {
		if err := deliverStatsCallback(addr, digest); err != nil {
			d.UnsubscribeStats(id)
		}
	}
}
