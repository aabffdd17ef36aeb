// Package api defines the JSON types shared between the HTTP server and the
// Go client.
package api

import "github.com/deedprotocol/escrow-backend/interfaces"

// RegisterAssetRequest is the body of POST /api/v1/assets.
type RegisterAssetRequest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Valuation   uint64 `json:"valuation"`
}

// UpdateDetailsRequest is the body of PUT /api/v1/assets/{id}.
type UpdateDetailsRequest struct {
	Description string `json:"description"`
	Valuation   uint64 `json:"valuation"`
}

// ListForSaleRequest is the body of POST /api/v1/assets/{id}/list.
type ListForSaleRequest struct {
	AskingPrice uint64 `json:"asking_price"`
}

// AssetResponse mirrors an asset record on the wire.
type AssetResponse struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	Description  string `json:"description"`
	Valuation    uint64 `json:"valuation"`
	ForSale      bool   `json:"for_sale"`
	AskingPrice  uint64 `json:"asking_price"`
	CreatedAt    int64  `json:"created_at"`
	LastTransfer int64  `json:"last_transfer"`
}

// AssetResponseFrom converts an asset record to its wire form.
func AssetResponseFrom(a interfaces.Asset) AssetResponse {
	return AssetResponse{
		ID:           a.ID.String(),
		Owner:        a.Owner.String(),
		Description:  a.Description,
		Valuation:    uint64(a.Valuation),
		ForSale:      a.ForSale,
		AskingPrice:  uint64(a.AskingPrice),
		CreatedAt:    int64(a.CreatedAt),
		LastTransfer: int64(a.LastTransfer),
	}
}

// IsOwnerResponse answers the ownership query.
type IsOwnerResponse struct {
	IsOwner bool `json:"is_owner"`
}

// EscrowResponse mirrors a pending transfer on the wire.
type EscrowResponse struct {
	AssetID        string `json:"asset_id"`
	Buyer          string `json:"buyer"`
	Seller         string `json:"seller"`
	Price          uint64 `json:"price"`
	BuyerApproved  bool   `json:"buyer_approved"`
	SellerApproved bool   `json:"seller_approved"`
	NotaryApproved bool   `json:"notary_approved"`
	ExpiresAt      int64  `json:"expires_at"`
}

// EscrowResponseFrom converts a pending transfer to its wire form.
func EscrowResponseFrom(t interfaces.EscrowTransfer) EscrowResponse {
	return EscrowResponse{
		AssetID:        t.AssetID.String(),
		Buyer:          t.Buyer.String(),
		Seller:         t.Seller.String(),
		Price:          uint64(t.Price),
		BuyerApproved:  t.BuyerApproved,
		SellerApproved: t.SellerApproved,
		NotaryApproved: t.NotaryApproved,
		ExpiresAt:      int64(t.ExpiresAt),
	}
}

// AddNotaryRequest is the body of POST /api/admin/notaries.
type AddNotaryRequest struct {
	Notary       string `json:"notary"`
	Jurisdiction string `json:"jurisdiction"`
}

// NotaryResponse mirrors a notary record on the wire.
type NotaryResponse struct {
	Identity     string `json:"identity"`
	Active       bool   `json:"active"`
	Jurisdiction string `json:"jurisdiction"`
}

// NotaryResponseFrom converts a notary record to its wire form.
func NotaryResponseFrom(r interfaces.NotaryRecord) NotaryResponse {
	return NotaryResponse{
		Identity:     r.Identity.String(),
		Active:       r.Active,
		Jurisdiction: r.Jurisdiction,
	}
}

// TransferOwnershipRequest is the body of POST /api/admin/transfer-ownership.
type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

// StatusResponse acknowledges a successful mutation.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries the error message of a failed operation.
type ErrorResponse struct {
	Error string `json:"error"`
}
