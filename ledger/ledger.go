// Package ledger provides an in-memory FundsLedger for development
// deployments and tests. Production deployments are expected to wire the
// engine to an external account system behind the same interface.
package ledger

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// InMemory is a FundsLedger backed by an account map. Transfers either apply
// fully or fail with no effect.
type InMemory struct {
	mu       sync.Mutex
	balances map[interfaces.Identity]interfaces.Amount
	log      *slog.Logger
}

// NewInMemory creates an empty ledger.
func NewInMemory(log *slog.Logger) *InMemory {
	if log == nil {
		log = slog.Default()
	}
	return &InMemory{
		balances: make(map[interfaces.Identity]interfaces.Amount),
		log:      log,
	}
}

// Credit adds funds to an account. Used to seed development deployments.
func (l *InMemory) Credit(id interfaces.Identity, amount interfaces.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[id] += amount
}

// BalanceOf returns the available balance. Unknown identities have zero.
func (l *InMemory) BalanceOf(id interfaces.Identity) interfaces.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[id]
}

// Transfer moves amount between accounts. A zero amount is a no-op that
// still requires both identities to be distinct principals on the ledger's
// terms, so it succeeds without touching balances.
func (l *InMemory) Transfer(amount interfaces.Amount, from, to interfaces.Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return fmt.Errorf("%w: account %s holds %d, needs %d",
			interfaces.ErrInsufficientFunds, from, l.balances[from], amount)
	}

	l.balances[from] -= amount
	l.balances[to] += amount

	l.log.Debug("ledger transfer",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.Uint64("amount", uint64(amount)))
	return nil
}
