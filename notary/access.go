package notary

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// Access holds the contract-owner singleton. It is created once at system
// construction with the deploying identity and injected into every component
// that needs owner gating; there are no package-level globals.
type Access struct {
	mu    sync.Mutex
	owner interfaces.Identity
	log   *slog.Logger
}

// NewAccess creates the access controller with the deploying identity as
// contract owner.
func NewAccess(deployer interfaces.Identity, log *slog.Logger) *Access {
	if log == nil {
		log = slog.Default()
	}
	return &Access{owner: deployer, log: log}
}

// Owner returns the current contract owner.
func (a *Access) Owner() interfaces.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.owner
}

// RequireOwner returns ErrNotAuthorized unless the caller is the contract
// owner.
func (a *Access) RequireOwner(caller interfaces.Identity) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.owner.Equal(caller) {
		return fmt.Errorf("%w: caller %s is not the contract owner", interfaces.ErrNotAuthorized, caller)
	}
	return nil
}

// TransferOwnership reassigns the contract owner. The owner can never be
// unset, only replaced.
func (a *Access) TransferOwnership(newOwner, caller interfaces.Identity) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.owner.Equal(caller) {
		return fmt.Errorf("%w: caller %s is not the contract owner", interfaces.ErrNotAuthorized, caller)
	}

	a.log.Info("contract ownership transferred",
		slog.String("from", a.owner.String()),
		slog.String("to", newOwner.String()))
	a.owner = newOwner
	return nil
}

// Restore replaces the contract owner from a persisted snapshot. Not part of
// the operation surface; ownership changes go through TransferOwnership.
func (a *Access) Restore(owner interfaces.Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.owner = owner
}
