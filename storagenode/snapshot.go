package storagenode

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/googol-project/googol/rpcapi"
)

const (
	primaryStateFileName = "barrel_state_primary.gob"
	queueSnapshotFileName = "barrel_urlqueue_backup.gob"
)

// primaryState is the serialized record a primary Storage Node snapshots to
// disk. Per §9 the Bloom filter is never serialized: it is always rebuilt
// from the index key set on load.
type primaryState struct {
	Index     map[string][]string
	Backlinks map[string][]string
	PageInfo  map[string]rpcapi.PageRecord
}

func writeGobAtomic(path string, v interface{}) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func readGob(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewDecoder(f).Decode(v)
}

// primaryStatePath is the path a primary node snapshots to; it's also where
// a non-primary node's disk-fallback recovery step (§4.1 step 2) looks.
func (n *Node) primaryStatePath() string {
	return filepath.Join(n.dataDir, primaryStateFileName)
}

func (n *Node) queueSnapshotPath() string {
	return filepath.Join(n.dataDir, queueSnapshotFileName)
}

// SnapshotToDisk serializes {index, backlinks, pageInfo} to this node's
// primary-state file. Called by the primary's autosave ticker, and by
// cmd/storagenode for every node at shutdown. Synchronous and mutually exclusive with itself via the
// node's Snapshotting state; proceeds concurrently with readers because it
// takes a copy of the maps (InvertedIndexCopy etc.) before writing.
func (n *Node) SnapshotToDisk() error {
	n.setState(StateSnapshotting)
	defer n.setState(StateReady)

	state := primaryState{
		Index:     n.InvertedIndexCopy(),
		Backlinks: n.BacklinksCopy(),
		PageInfo:  n.PageInfoCopy(),
	}

	if err := os.MkdirAll(n.dataDir, 0755); err != nil {
		return fmt.Errorf("snapshot: mkdir: %w", err)
	}

	return writeGobAtomic(n.primaryStatePath(), &state)
}

// LoadPrimaryStateFromDisk deserializes the primary's snapshot file and
// merges it in, rebuilding the Bloom filter from the resulting index.
func (n *Node) LoadPrimaryStateFromDisk() error {
	var state primaryState
	if err := readGob(n.primaryStatePath(), &state); err != nil {
		return err
	}

	n.PutAll(state.Index, state.Backlinks, state.PageInfo)
	return nil
}

// StartAutosave runs SnapshotToDisk every interval until stop is closed.
// Only the primary node should call this.
func (n *Node) StartAutosave(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := n.SnapshotToDisk(); err != nil {
				n.logger.Printf("[%s] autosave snapshot failed: %v", n.Name, err)
			}
		}
	}
}

// BackupURLQueue overwrites this node's replica of the Dispatcher's queue
// and persists it to disk. queueMu is held across the file write, so
// concurrent backups never interleave on the same file.
func (n *Node) BackupURLQueue(snapshot rpcapi.URLQueueSnapshot) error {
	n.queueMu.Lock()
	defer n.queueMu.Unlock()
	n.queue = snapshot

	if err := os.MkdirAll(n.dataDir, 0755); err != nil {
		return fmt.Errorf("backup queue: mkdir: %w", err)
	}
	return writeGobAtomic(n.queueSnapshotPath(), &snapshot)
}

// RestoreURLQueue returns the last known queue snapshot. If this node has
// never received one in memory, it first tries to reload from disk (so a
// cold-started node can still answer the Dispatcher).
func (n *Node) RestoreURLQueue() rpcapi.URLQueueSnapshot {
	n.queueMu.Lock()
	defer n.queueMu.Unlock()

	if len(n.queue.Pending) > 0 || len(n.queue.Visited) > 0 {
		return n.queue
	}

	var snapshot rpcapi.URLQueueSnapshot
	if err := readGob(n.queueSnapshotPath(), &snapshot); err == nil {
		n.queue = snapshot
	}
	return n.queue
}
