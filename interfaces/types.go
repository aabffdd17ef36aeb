// Package interfaces defines the core interfaces and types for the deed
// escrow system. It provides the contract between different components
// without implementation details.
package interfaces

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Identity is a 20-byte address identifying a party: an asset owner, a
// buyer, a notary, the contract owner, or the engine's custodial principal.
type Identity [20]byte

// NewIdentityFromBytes creates an identity from a raw 20-byte slice.
func NewIdentityFromBytes(raw []byte) (Identity, error) {
	if len(raw) != 20 {
		return Identity{}, errors.New("invalid identity length: must be 20 bytes")
	}

	var id Identity
	copy(id[:], raw)
	return id, nil
}

// NewIdentityFromHex creates an identity from a 40-character hex string,
// with or without a 0x prefix.
func NewIdentityFromHex(s string) (Identity, error) {
	clean := strings.TrimPrefix(s, "0x")
	if len(clean) != 40 {
		return Identity{}, errors.New("invalid identity length: hex string must be 40 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewIdentityFromBytes(raw)
}

// String returns the hex representation of the identity.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 20-byte identity.
func (id Identity) Bytes() []byte {
	return id[:]
}

// Equal compares two identities for equality.
func (id Identity) Equal(other Identity) bool {
	return id == other
}

// IsZero reports whether the identity is the all-zero address.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// Amount is a non-negative quantity of ledger units.
type Amount uint64

// Timestamp is a monotonically non-decreasing integer time value provided by
// the Clock collaborator. The unit is opaque to the core; only ordering and
// the fixed escrow window matter.
type Timestamp int64

// Data model limits.
const (
	// MaxAssetIDLength bounds asset identifiers.
	MaxAssetIDLength = 36

	// MaxDescriptionLength bounds asset descriptions, in code points.
	MaxDescriptionLength = 500

	// MaxJurisdictionLength bounds notary jurisdiction labels, in bytes.
	MaxJurisdictionLength = 50
)

// EscrowWindow is the fixed number of time units an escrow transfer stays
// open before it can only be cancelled or refunded.
const EscrowWindow Timestamp = 1440

// AssetID is an opaque, caller-supplied asset identifier. At most 36 ASCII
// bytes; once registered it is never reused.
type AssetID string

// NewAssetID validates and returns an asset identifier.
func NewAssetID(s string) (AssetID, error) {
	id := AssetID(s)
	return id, id.Validate()
}

// Validate checks the identifier against the length and character rules.
func (id AssetID) Validate() error {
	if len(id) == 0 {
		return fmt.Errorf("%w: asset id must not be empty", ErrInvalidInput)
	}
	if len(id) > MaxAssetIDLength {
		return fmt.Errorf("%w: asset id exceeds %d bytes", ErrInvalidInput, MaxAssetIDLength)
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return fmt.Errorf("%w: asset id contains non-printable or non-ASCII byte at %d", ErrInvalidInput, i)
		}
	}
	return nil
}

// String returns the identifier as a plain string.
func (id AssetID) String() string {
	return string(id)
}

// ValidateDescription checks an asset description against the length limit.
func ValidateDescription(s string) error {
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d code points", ErrInvalidInput, MaxDescriptionLength)
	}
	return nil
}

// ValidateJurisdiction checks a notary jurisdiction label.
func ValidateJurisdiction(s string) error {
	if len(s) > MaxJurisdictionLength {
		return fmt.Errorf("%w: jurisdiction exceeds %d bytes", ErrInvalidInput, MaxJurisdictionLength)
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return fmt.Errorf("%w: jurisdiction contains non-ASCII byte at %d", ErrInvalidInput, i)
		}
	}
	return nil
}

// Asset is a registered deed record. Assets are created once, mutated by
// their owner and by completed escrow transfers, and never deleted.
type Asset struct {
	ID           AssetID   `json:"id"`
	Owner        Identity  `json:"owner"`
	Description  string    `json:"description"`
	Valuation    Amount    `json:"valuation"`
	ForSale      bool      `json:"for_sale"`
	AskingPrice  Amount    `json:"asking_price"`
	CreatedAt    Timestamp `json:"created_at"`
	LastTransfer Timestamp `json:"last_transfer"`
}

// NotaryRecord is an authorized notary entry. Records are deactivated, never
// deleted, and there is no reactivation path.
type NotaryRecord struct {
	Identity     Identity `json:"identity"`
	Active       bool     `json:"active"`
	Jurisdiction string   `json:"jurisdiction"`
}

// EscrowTransfer is a pending three-party transfer for a single asset. At
// most one exists per asset id; the record is removed the moment the
// transfer reaches a terminal outcome.
type EscrowTransfer struct {
	AssetID        AssetID   `json:"asset_id"`
	Buyer          Identity  `json:"buyer"`
	Seller         Identity  `json:"seller"`
	Price          Amount    `json:"price"`
	BuyerApproved  bool      `json:"buyer_approved"`
	SellerApproved bool      `json:"seller_approved"`
	NotaryApproved bool      `json:"notary_approved"`
	ExpiresAt      Timestamp `json:"expires_at"`
}

// FullyApproved reports whether all three parties have consented.
func (t EscrowTransfer) FullyApproved() bool {
	return t.BuyerApproved && t.SellerApproved && t.NotaryApproved
}

// ExpiredAt reports whether the transfer window has elapsed at the given
// time. Expiry is strict: a transfer is still actionable at now == ExpiresAt.
func (t EscrowTransfer) ExpiredAt(now Timestamp) bool {
	return now > t.ExpiresAt
}
