package crawler

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/googol-project/googol/storagenode"
)

// update is one page's contribution, as multicast to every Storage Node.
type update struct {
	ID            uuid.UUID
	URL           string
	Title         string
	Snippet       string
	Terms         []string
	OutgoingLinks []string
}

func (u update) apply(client *storagenode.Client) error {
	return client.UpdateIndex(u.URL, u.Title, u.Snippet, u.Terms, u.OutgoingLinks)
}

// PeerResolver maps a Storage Node's configured name to its current dial
// address.
type PeerResolver func(name string) (addr string, found bool, err error)

// target is one multicast destination: a resolved name plus whatever
// updates are still owed to it after a failed attempt.
type target struct {
	name    string
	client  *storagenode.Client
	pending []update
}

// Multicaster reliably delivers index updates to every configured Storage
// Node. A delivery failure for one target spills that update into a
// per-target retry queue instead of blocking or dropping it; DrainRetries
// periodically attempts to clear those queues.
type Multicaster struct {
	resolver PeerResolver

	mu      sync.Mutex
	targets map[string]*target
}

// NewMulticaster returns a Multicaster addressing the given Storage Node
// names, resolved on demand via resolver.
func NewMulticaster(names []string, resolver PeerResolver) *Multicaster {
	targets := make(map[string]*target, len(names))
	for _, name := range names {
		targets[name] = &target{name: name}
	}
	return &Multicaster{resolver: resolver, targets: targets}
}

func (m *Multicaster) resolveTarget(t *target) error {
	if t.client != nil {
		return nil
	}
	addr, found, err := m.resolver(t.name)
	if err != nil {
		return err
	}
	if !found {
		return errTargetUnresolvable(t.name)
	}
	t.client = storagenode.NewClient(addr)
	return nil
}

// Send attempts u against every target. Targets that fail (unresolvable or
// unreachable) get u appended to their pending queue instead of erroring
// the caller; the aggregate of those failures is still returned so the
// caller can log it.
func (m *Multicaster) Send(u update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs *multierror.Error
	for _, t := range m.targets {
		if err := m.resolveTarget(t); err != nil {
			t.pending = append(t.pending, u)
			errs = multierror.Append(errs, fmt.Errorf("update %s -> %s: %w", u.ID, t.name, err))
			continue
		}
		if err := u.apply(t.client); err != nil {
			t.client = nil // force re-resolve next attempt
			t.pending = append(t.pending, u)
			errs = multierror.Append(errs, fmt.Errorf("update %s -> %s: %w", u.ID, t.name, err))
			continue
		}
	}
	return errs.ErrorOrNil()
}

// DrainRetries re-resolves every target with a non-empty pending queue and
// drains it in FIFO order; the first failure for a target during this pass
// stops draining that target (its remaining updates retry on the next
// call), matching the per-pass "stop on first failure" rule. The returned
// error aggregates every failure from this pass, each tagged with the
// failing update's ID, for the caller to log.
func (m *Multicaster) DrainRetries() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs *multierror.Error
	for _, t := range m.targets {
		if len(t.pending) == 0 {
			continue
		}
		if err := m.resolveTarget(t); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("drain -> %s: %w", t.name, err))
			continue
		}

		drained := 0
		for _, u := range t.pending {
			if err := u.apply(t.client); err != nil {
				t.client = nil
				errs = multierror.Append(errs, fmt.Errorf("drain update %s -> %s: %w", u.ID, t.name, err))
				break
			}
			drained++
		}
		t.pending = t.pending[drained:]
	}
	return errs.ErrorOrNil()
}

type errTargetUnresolvable string

func (e errTargetUnresolvable) Error() string {
	return "crawler: storage node " + string(e) + " not registered"
}
