package interfaces

import "net/http"

// FundsLedger is the external account system that holds and moves funds.
// The escrow engine acts through it as a custodial principal whose identity
// is distinct from any external party.
type FundsLedger interface {
	// BalanceOf returns the available balance of an identity. Unknown
	// identities have a zero balance.
	BalanceOf(id Identity) Amount

	// Transfer moves amount from one identity to another. It either applies
	// fully or returns an error with no effect.
	Transfer(amount Amount, from, to Identity) error
}

// Clock is the external monotonic time source. Within one operation all
// reads observe the same value.
type Clock interface {
	// Now returns the current timestamp. Values never decrease.
	Now() Timestamp
}

// Authenticator resolves the invoking identity of an HTTP request. The core
// components never authenticate callers themselves; they receive the
// identity explicitly on every operation.
type Authenticator interface {
	// Authenticate returns the caller identity for the request. The body is
	// passed separately because the handler has already consumed it.
	Authenticate(r *http.Request, body []byte) (Identity, error)
}

// AssetRegistry owns deed records: identity, metadata, and sale status.
type AssetRegistry interface {
	// Register creates an asset owned by the caller, not for sale, with a
	// zero asking price. Fails with ErrAlreadyExists if the id is taken.
	Register(id AssetID, description string, valuation Amount, caller Identity) error

	// UpdateDetails replaces description and valuation. Fails with
	// ErrNotFound or ErrNotOwner.
	UpdateDetails(id AssetID, description string, valuation Amount, caller Identity) error

	// ListForSale marks the asset for sale at the asking price. A zero
	// asking price is accepted.
	ListForSale(id AssetID, askingPrice Amount, caller Identity) error

	// Delist clears the for-sale flag. The asking price is left unchanged.
	Delist(id AssetID, caller Identity) error

	// Get returns the asset record, or false if the id is unknown.
	Get(id AssetID) (Asset, bool)

	// IsOwner reports whether the identity owns the asset. Unknown ids
	// return false, not an error.
	IsOwner(id AssetID, identity Identity) bool

	// Transfer reassigns ownership, clears the for-sale flag, and stamps the
	// last-transfer time. Used by the escrow engine on completion; not part
	// of the public API surface.
	Transfer(id AssetID, newOwner Identity, at Timestamp) error
}

// NotaryRegistry owns the set of authorized notaries. Mutations are gated on
// the contract owner via AccessControl.
type NotaryRegistry interface {
	// Add authorizes a new active notary. Fails with ErrAlreadyAuthorized if
	// a record exists, even a deactivated one.
	Add(notary Identity, jurisdiction string, caller Identity) error

	// Deactivate marks the notary inactive. The record is kept.
	Deactivate(notary Identity, caller Identity) error

	// IsActive reports whether the identity has an active notary record.
	IsActive(identity Identity) bool

	// Get returns the notary record, or false if the identity is unknown.
	Get(identity Identity) (NotaryRecord, bool)
}

// AccessControl holds the contract-owner singleton that gates notary
// management and its own reassignment.
type AccessControl interface {
	// Owner returns the current contract owner.
	Owner() Identity

	// RequireOwner returns ErrNotAuthorized unless the caller is the
	// contract owner.
	RequireOwner(caller Identity) error

	// TransferOwnership reassigns the contract owner. Only the current
	// owner may call it; the owner can never be unset.
	TransferOwnership(newOwner, caller Identity) error
}

// Terminal outcomes of a pending transfer, as recorded in the journal.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeExpired   = "expired"
)

// EscrowOutcome is one journal entry: how a pending transfer ended. The
// pending record itself is deleted at the terminal state, so the journal is
// the only trace of settled transfers.
type EscrowOutcome struct {
	AssetID AssetID   `json:"asset_id"`
	Outcome string    `json:"outcome"`
	Buyer   Identity  `json:"buyer"`
	Seller  Identity  `json:"seller"`
	Price   Amount    `json:"price"`
	Caller  Identity  `json:"caller"`
	At      Timestamp `json:"at"`
}

// EscrowJournal records terminal escrow outcomes for audit. Recording
// happens after the transfer settled; a journal failure must not undo it.
type EscrowJournal interface {
	RecordOutcome(outcome EscrowOutcome) error
}

// EscrowEngine is the three-party transfer state machine. Per asset id the
// states are NoEscrow -> Pending -> {completed, cancelled, expired}, where
// the terminal outcomes immediately delete the record and revert the id to
// NoEscrow.
type EscrowEngine interface {
	// InitiatePurchase moves the asking price from the buyer into custody
	// and opens a pending transfer with the buyer's approval already set.
	InitiatePurchase(id AssetID, buyer Identity) error

	// ApproveAsSeller records the asset owner's consent. Idempotent.
	ApproveAsSeller(id AssetID, caller Identity) error

	// ApproveAsNotary records an active notary's consent. Idempotent.
	ApproveAsNotary(id AssetID, caller Identity) error

	// Complete releases the escrowed funds to the seller, reassigns asset
	// ownership to the buyer, and deletes the record. Callable by anyone
	// once all three approvals are set and the window has not elapsed.
	Complete(id AssetID, caller Identity) error

	// Cancel refunds the buyer and deletes the record. Callable by buyer,
	// seller, or any active notary, regardless of expiry or approval state.
	Cancel(id AssetID, caller Identity) error

	// RefundExpired refunds the buyer and deletes the record once the window
	// has elapsed. Callable by anyone.
	RefundExpired(id AssetID, caller Identity) error

	// Get returns the pending transfer, or false if none exists.
	Get(id AssetID) (EscrowTransfer, bool)
}
