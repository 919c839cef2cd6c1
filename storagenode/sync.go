package storagenode

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// PeerResolver maps a peer's configured name to its dial address, so Sync
// doesn't need to know about the registry directly.
type PeerResolver func(name string) (addr string, found bool, err error)

// Sync runs the three-step startup recovery of §4.1: try each configured
// peer in turn, merging in the first one that answers; if every peer
// fails, fall back to this node's own disk snapshot; otherwise start
// empty. peerNames should list every configured Storage Node name
// including this one's own (self is skipped).
func (n *Node) Sync(self string, peerNames []string, resolve PeerResolver) error {
	n.setState(StateSyncing)
	defer n.setState(StateReady)

	var errs *multierror.Error
	synced := false

	for _, peer := range peerNames {
		if peer == self {
			continue
		}

		addr, found, err := resolve(peer)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("resolve %s: %w", peer, err))
			continue
		}
		if !found {
			errs = multierror.Append(errs, fmt.Errorf("resolve %s: not registered", peer))
			continue
		}

		client := NewClient(addr)

		index, err := client.GetInvertedIndex()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("sync from %s: %w", peer, err))
			continue
		}
		backlinks, err := client.GetBacklinksMap()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("sync from %s: %w", peer, err))
			continue
		}
		pageInfo, err := client.GetPageInfoMap()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("sync from %s: %w", peer, err))
			continue
		}

		n.PutAll(index, backlinks, pageInfo)
		n.logger.Printf("[%s] synced from peer %s", n.Name, peer)
		synced = true
		break
	}

	if synced {
		return nil
	}

	if err := n.LoadPrimaryStateFromDisk(); err == nil {
		n.logger.Printf("[%s] no peers available, restored from disk snapshot", n.Name)
		return nil
	}

	n.logger.Printf("[%s] no peers and no disk snapshot, starting empty (%v)", n.Name, errs.ErrorOrNil())
	return nil
}
