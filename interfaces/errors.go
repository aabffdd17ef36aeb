package interfaces

import "errors"

// Error taxonomy for the core operations. All of these are local,
// recoverable conditions returned to the caller; none are fatal to the
// system. Every mutating operation validates its preconditions before any
// effect, so the first violated precondition short-circuits with no partial
// mutation.
var (
	// ErrNotAuthorized is returned when the caller lacks the authority the
	// operation requires (contract-owner gating, cancel party gating).
	ErrNotAuthorized = errors.New("caller not authorized")

	// ErrNotFound is returned when the referenced asset does not exist.
	ErrNotFound = errors.New("asset not found")

	// ErrAlreadyExists is returned when registering an asset id that is
	// already taken. Asset ids are never reused.
	ErrAlreadyExists = errors.New("asset id already registered")

	// ErrNotOwner is returned when a caller other than the asset owner
	// attempts an owner-only mutation.
	ErrNotOwner = errors.New("caller is not the asset owner")

	// ErrNotForSale is returned when initiating a purchase of an asset that
	// is not listed.
	ErrNotForSale = errors.New("asset not listed for sale")

	// ErrInsufficientFunds is returned when the buyer's available balance
	// does not cover the asking price.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTransferNotFound is returned when no pending escrow exists for the
	// asset id.
	ErrTransferNotFound = errors.New("no pending transfer for asset")

	// ErrTransferExpired is returned when an approval or completion is
	// attempted after the escrow window elapsed.
	ErrTransferExpired = errors.New("transfer expired")

	// ErrAlreadyAuthorized is returned when adding a notary that already has
	// a record, active or not. There is no reactivation path.
	ErrAlreadyAuthorized = errors.New("notary already authorized")

	// ErrNotNotary is returned when the identity has no active notary record.
	ErrNotNotary = errors.New("not an active notary")

	// ErrTransferIncomplete is returned by complete when any approval is
	// still missing. The escrow record is left intact for retry.
	ErrTransferIncomplete = errors.New("transfer approvals incomplete")

	// ErrTransferAlreadyPending is returned when initiating a purchase for
	// an asset that already has a live escrow.
	ErrTransferAlreadyPending = errors.New("transfer already pending for asset")

	// ErrNotYetExpired is returned by refundExpired before the escrow window
	// has elapsed.
	ErrNotYetExpired = errors.New("transfer not yet expired")

	// ErrLedgerFailure wraps any error bubbled up from the FundsLedger. Any
	// record mutation staged in the same operation is rolled back.
	ErrLedgerFailure = errors.New("funds ledger failure")

	// ErrInvalidInput wraps field validation failures: asset id, description,
	// and jurisdiction limits.
	ErrInvalidInput = errors.New("invalid input")
)
