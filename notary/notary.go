// Package notary implements the notary registry and the contract-owner
// access control that gates its mutations.
package notary

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// Registry owns notary records. Records are created active, deactivated by
// the contract owner, and never deleted. Re-adding a deactivated notary is
// rejected; there is deliberately no reactivation path.
type Registry struct {
	mu      sync.Mutex
	records map[interfaces.Identity]interfaces.NotaryRecord

	access interfaces.AccessControl
	log    *slog.Logger
}

// New creates an empty notary registry gated by the given access controller.
func New(access interfaces.AccessControl, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		records: make(map[interfaces.Identity]interfaces.NotaryRecord),
		access:  access,
		log:     log,
	}
}

// Add authorizes a new active notary. Only the contract owner may call it.
// An existing record, active or deactivated, rejects the add.
func (r *Registry) Add(notary interfaces.Identity, jurisdiction string, caller interfaces.Identity) error {
	if err := r.access.RequireOwner(caller); err != nil {
		return err
	}
	if err := interfaces.ValidateJurisdiction(jurisdiction); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[notary]; ok {
		return fmt.Errorf("%w: %s", interfaces.ErrAlreadyAuthorized, notary)
	}

	r.records[notary] = interfaces.NotaryRecord{
		Identity:     notary,
		Active:       true,
		Jurisdiction: jurisdiction,
	}

	r.log.Info("notary authorized",
		slog.String("notary", notary.String()),
		slog.String("jurisdiction", jurisdiction))
	return nil
}

// Deactivate marks the notary inactive. Only the contract owner may call it.
func (r *Registry) Deactivate(notary interfaces.Identity, caller interfaces.Identity) error {
	if err := r.access.RequireOwner(caller); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[notary]
	if !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrNotNotary, notary)
	}

	rec.Active = false
	r.records[notary] = rec

	r.log.Info("notary deactivated", slog.String("notary", notary.String()))
	return nil
}

// IsActive reports whether the identity has an active record. There is no
// error path; unknown identities are simply not active.
func (r *Registry) IsActive(identity interfaces.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[identity]
	return ok && rec.Active
}

// Get returns the notary record, or false if the identity is unknown.
func (r *Registry) Get(identity interfaces.Identity) (interfaces.NotaryRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[identity]
	return rec, ok
}

// Snapshot returns all notary records ordered by identity, for persistence.
func (r *Registry) Snapshot() []interfaces.NotaryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]interfaces.NotaryRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Identity.String() < out[j].Identity.String()
	})
	return out
}

// Restore replaces the registry contents with a snapshot.
func (r *Registry) Restore(records []interfaces.NotaryRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make(map[interfaces.Identity]interfaces.NotaryRecord, len(records))
	for _, rec := range records {
		r.records[rec.Identity] = rec
	}
}
