// Package escrow implements the three-party transfer state machine. Per
// asset id the states are NoEscrow -> Pending -> {completed, cancelled,
// expired}; the terminal outcomes are not stored, they delete the record and
// revert the id to NoEscrow.
//
// Funds move through the external FundsLedger with the engine acting as a
// custodial principal: the asking price is deposited into custody when a
// purchase is initiated, released to the seller on completion, and refunded
// to the buyer on cancellation or expiry. Each operation is one atomic unit;
// a ledger failure rolls back any record mutation staged in the same
// operation.
package escrow

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// Engine is the escrow state machine. It exclusively owns EscrowTransfer
// records and reads, never owns, asset and notary data during validation.
type Engine struct {
	mu        sync.Mutex
	transfers map[interfaces.AssetID]interfaces.EscrowTransfer

	assets    interfaces.AssetRegistry
	notaries  interfaces.NotaryRegistry
	ledger    interfaces.FundsLedger
	clock     interfaces.Clock
	custodian interfaces.Identity
	journal   interfaces.EscrowJournal
	log       *slog.Logger
}

// New creates an engine holding escrowed funds under the custodian identity.
// The custodian must be distinct from any external party on the ledger.
func New(
	assets interfaces.AssetRegistry,
	notaries interfaces.NotaryRegistry,
	ledger interfaces.FundsLedger,
	clock interfaces.Clock,
	custodian interfaces.Identity,
	log *slog.Logger,
) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		transfers: make(map[interfaces.AssetID]interfaces.EscrowTransfer),
		assets:    assets,
		notaries:  notaries,
		ledger:    ledger,
		clock:     clock,
		custodian: custodian,
		log:       log,
	}
}

// Custodian returns the identity under which escrowed funds are held.
func (e *Engine) Custodian() interfaces.Identity {
	return e.custodian
}

// SetJournal attaches a journal that receives terminal outcomes. Without one
// settled transfers leave no trace beyond the asset record.
func (e *Engine) SetJournal(journal interfaces.EscrowJournal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.journal = journal
}

// recordOutcome journals a terminal outcome. The transfer already settled;
// a journal failure is logged, never propagated.
func (e *Engine) recordOutcome(tr interfaces.EscrowTransfer, outcome string, caller interfaces.Identity, at interfaces.Timestamp) {
	if e.journal == nil {
		return
	}
	err := e.journal.RecordOutcome(interfaces.EscrowOutcome{
		AssetID: tr.AssetID,
		Outcome: outcome,
		Buyer:   tr.Buyer,
		Seller:  tr.Seller,
		Price:   tr.Price,
		Caller:  caller,
		At:      at,
	})
	if err != nil {
		e.log.Error("journaling escrow outcome failed",
			slog.String("asset", tr.AssetID.String()),
			slog.String("outcome", outcome),
			"err", err)
	}
}

// InitiatePurchase opens a pending transfer for a listed asset. Initiating
// is itself the buyer's binding consent, so the buyer approval is set at
// creation. The asking price moves from the buyer into custody; if the
// deposit fails the staged record is removed and nothing changes.
func (e *Engine) InitiatePurchase(id interfaces.AssetID, buyer interfaces.Identity) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	asset, ok := e.assets.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrNotFound, id)
	}
	if !asset.ForSale {
		return fmt.Errorf("%w: %s", interfaces.ErrNotForSale, id)
	}
	if _, ok := e.transfers[id]; ok {
		return fmt.Errorf("%w: %s", interfaces.ErrTransferAlreadyPending, id)
	}
	if e.ledger.BalanceOf(buyer) < asset.AskingPrice {
		return fmt.Errorf("%w: buyer %s cannot cover %d", interfaces.ErrInsufficientFunds, buyer, asset.AskingPrice)
	}

	now := e.clock.Now()
	e.transfers[id] = interfaces.EscrowTransfer{
		AssetID:       id,
		Buyer:         buyer,
		Seller:        asset.Owner,
		Price:         asset.AskingPrice,
		BuyerApproved: true,
		ExpiresAt:     now + interfaces.EscrowWindow,
	}

	// Record first, deposit second: a failed deposit unwinds the record and
	// the operation has no effect.
	if err := e.ledger.Transfer(asset.AskingPrice, buyer, e.custodian); err != nil {
		delete(e.transfers, id)
		return fmt.Errorf("%w: %w", interfaces.ErrLedgerFailure, err)
	}

	e.log.Info("escrow opened",
		slog.String("asset", id.String()),
		slog.String("buyer", buyer.String()),
		slog.String("seller", asset.Owner.String()),
		slog.Uint64("price", uint64(asset.AskingPrice)),
		slog.Int64("expires_at", int64(now+interfaces.EscrowWindow)))
	return nil
}

// ApproveAsSeller records the asset owner's consent. Idempotent; blocked
// once the window has elapsed.
func (e *Engine) ApproveAsSeller(id interfaces.AssetID, caller interfaces.Identity) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.transfers[id]
	if !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrTransferNotFound, id)
	}
	if !e.assets.IsOwner(id, caller) {
		return fmt.Errorf("%w: %s", interfaces.ErrNotOwner, id)
	}
	if tr.ExpiredAt(e.clock.Now()) {
		return fmt.Errorf("%w: %s", interfaces.ErrTransferExpired, id)
	}

	tr.SellerApproved = true
	e.transfers[id] = tr

	e.log.Info("seller approved", slog.String("asset", id.String()))
	return nil
}

// ApproveAsNotary records an active notary's consent. Idempotent; blocked
// once the window has elapsed.
func (e *Engine) ApproveAsNotary(id interfaces.AssetID, caller interfaces.Identity) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.notaries.IsActive(caller) {
		return fmt.Errorf("%w: %s", interfaces.ErrNotNotary, caller)
	}
	tr, ok := e.transfers[id]
	if !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrTransferNotFound, id)
	}
	if tr.ExpiredAt(e.clock.Now()) {
		return fmt.Errorf("%w: %s", interfaces.ErrTransferExpired, id)
	}

	tr.NotaryApproved = true
	e.transfers[id] = tr

	e.log.Info("notary approved",
		slog.String("asset", id.String()),
		slog.String("notary", caller.String()))
	return nil
}

// Complete finishes a fully-approved transfer: funds release from custody to
// the seller, ownership flips to the buyer, and the record is deleted.
// Callable by anyone; an incomplete approval set leaves the record intact
// for retry.
func (e *Engine) Complete(id interfaces.AssetID, caller interfaces.Identity) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.transfers[id]
	if !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrTransferNotFound, id)
	}
	now := e.clock.Now()
	if tr.ExpiredAt(now) {
		return fmt.Errorf("%w: %s", interfaces.ErrTransferExpired, id)
	}
	if !tr.FullyApproved() {
		return fmt.Errorf("%w: %s", interfaces.ErrTransferIncomplete, id)
	}

	if err := e.ledger.Transfer(tr.Price, e.custodian, tr.Seller); err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrLedgerFailure, err)
	}

	if err := e.assets.Transfer(id, tr.Buyer, now); err != nil {
		// Cannot happen while the asset invariants hold (assets are never
		// deleted); pull the funds back into custody and surface it.
		if rbErr := e.ledger.Transfer(tr.Price, tr.Seller, e.custodian); rbErr != nil {
			e.log.Error("rollback of fund release failed",
				slog.String("asset", id.String()),
				"err", rbErr)
		}
		return fmt.Errorf("ownership transfer failed for %s: %w", id, err)
	}

	delete(e.transfers, id)
	e.recordOutcome(tr, interfaces.OutcomeCompleted, caller, now)

	e.log.Info("escrow completed",
		slog.String("asset", id.String()),
		slog.String("buyer", tr.Buyer.String()),
		slog.String("seller", tr.Seller.String()),
		slog.Uint64("price", uint64(tr.Price)),
		slog.String("completed_by", caller.String()))
	return nil
}

// Cancel refunds the buyer and deletes the record. Any of the three trusted
// parties may cancel at any point, expired or not, whatever the approval
// state. This is the escape valve; blind completion after expiry is blocked
// instead.
func (e *Engine) Cancel(id interfaces.AssetID, caller interfaces.Identity) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.transfers[id]
	if !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrTransferNotFound, id)
	}
	if !caller.Equal(tr.Buyer) && !caller.Equal(tr.Seller) && !e.notaries.IsActive(caller) {
		return fmt.Errorf("%w: %s may not cancel transfer for %s", interfaces.ErrNotAuthorized, caller, id)
	}

	if err := e.refund(tr); err != nil {
		return err
	}
	delete(e.transfers, id)
	e.recordOutcome(tr, interfaces.OutcomeCancelled, caller, e.clock.Now())

	e.log.Info("escrow cancelled",
		slog.String("asset", id.String()),
		slog.String("cancelled_by", caller.String()))
	return nil
}

// RefundExpired refunds the buyer once the window has elapsed. Callable by
// anyone; expiry is only enforced lazily, the next time an operation touches
// the record.
func (e *Engine) RefundExpired(id interfaces.AssetID, caller interfaces.Identity) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.transfers[id]
	if !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrTransferNotFound, id)
	}
	now := e.clock.Now()
	if !tr.ExpiredAt(now) {
		return fmt.Errorf("%w: %s", interfaces.ErrNotYetExpired, id)
	}

	if err := e.refund(tr); err != nil {
		return err
	}
	delete(e.transfers, id)
	e.recordOutcome(tr, interfaces.OutcomeExpired, caller, now)

	e.log.Info("expired escrow refunded",
		slog.String("asset", id.String()),
		slog.String("refunded_by", caller.String()))
	return nil
}

// refund returns the escrowed price from custody to the buyer. The caller
// holds the engine mutex and deletes the record on success.
func (e *Engine) refund(tr interfaces.EscrowTransfer) error {
	if err := e.ledger.Transfer(tr.Price, e.custodian, tr.Buyer); err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrLedgerFailure, err)
	}
	return nil
}

// Get returns the pending transfer, or false if none exists.
func (e *Engine) Get(id interfaces.AssetID) (interfaces.EscrowTransfer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.transfers[id]
	return tr, ok
}

// Snapshot returns all pending transfers ordered by asset id, for
// persistence.
func (e *Engine) Snapshot() []interfaces.EscrowTransfer {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]interfaces.EscrowTransfer, 0, len(e.transfers))
	for _, tr := range e.transfers {
		out = append(out, tr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out
}

// Restore replaces the pending transfers with a snapshot.
func (e *Engine) Restore(transfers []interfaces.EscrowTransfer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.transfers = make(map[interfaces.AssetID]interfaces.EscrowTransfer, len(transfers))
	for _, tr := range transfers {
		e.transfers[tr.AssetID] = tr
	}
}
