package dispatcher

import (
	"time"

	"github.com/googol-project/googol/rpcapi"
	"github.com/googol-project/googol/storagenode"
)

// RecoverQueue runs before the Dispatcher announces itself on the RPC bus:
// it queries restoreURLQueue on every configured replica name, retrying
// each one up to attempts times with delay between tries, and seeds
// pending/visited from whichever snapshot maximizes |pending|+|visited|.
// It also populates the live replica list from whichever names answered.
func (d *Dispatcher) RecoverQueue(attempts int, delay time.Duration) {
	var best rpcapi.URLQueueSnapshot
	bestSize := -1
	live := make([]replicaEntry, 0, len(d.configuredNames))

	for _, name := range d.configuredNames {
		for attempt := 0; attempt < attempts; attempt++ {
			addr, found, err := d.resolver(name)
			if err != nil || !found {
				time.Sleep(delay)
				continue
			}

			client := storagenode.NewClient(addr)
			snapshot, err := client.RestoreURLQueue()
			if err != nil {
				time.Sleep(delay)
				continue
			}

			live = append(live, replicaEntry{name: name, client: client})
			size := len(snapshot.Pending) + len(snapshot.Visited)
			if size > bestSize {
				bestSize = size
				best = snapshot
			}
			break
		}
	}

	d.replicasMu.Lock()
	d.replicas = live
	d.replicasMu.Unlock()

	if bestSize < 0 {
		d.logger.Printf("dispatcher: no queue snapshot recovered from any replica, starting empty")
		return
	}

	d.mu.Lock()
	d.pending = append([]string(nil), best.Pending...)
	d.visited = make(map[string]struct{}, len(best.Visited))
	for _, u := range best.Visited {
		d.visited[u] = struct{}{}
	}
	d.mu.Unlock()

	d.logger.Printf("dispatcher: recovered queue (%d pending, %d visited)", len(best.Pending), len(best.Visited))
}
