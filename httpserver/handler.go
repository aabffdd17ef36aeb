package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/deedprotocol/escrow-backend/api"
	"github.com/deedprotocol/escrow-backend/identity"
	"github.com/deedprotocol/escrow-backend/interfaces"
	"github.com/deedprotocol/escrow-backend/metrics"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// Handler processes HTTP requests for the deed registry service. Every
// mutating endpoint resolves the caller identity through the configured
// Authenticator and passes it to the core components explicitly.
type Handler struct {
	assets   interfaces.AssetRegistry
	notaries interfaces.NotaryRegistry
	escrows  interfaces.EscrowEngine
	access   interfaces.AccessControl
	auth     interfaces.Authenticator
	log      *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
func NewHandler(assets interfaces.AssetRegistry, notaries interfaces.NotaryRegistry, escrows interfaces.EscrowEngine, access interfaces.AccessControl, auth interfaces.Authenticator, log *slog.Logger) *Handler {
	return &Handler{
		assets:   assets,
		notaries: notaries,
		escrows:  escrows,
		access:   access,
		auth:     auth,
		log:      log,
	}
}

// errorStatus maps a core error to the HTTP status code the API reports.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, interfaces.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrNotFound), errors.Is(err, interfaces.ErrTransferNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrNotAuthorized), errors.Is(err, interfaces.ErrNotOwner), errors.Is(err, interfaces.ErrNotNotary):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrAlreadyExists), errors.Is(err, interfaces.ErrAlreadyAuthorized), errors.Is(err, interfaces.ErrTransferAlreadyPending):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, interfaces.ErrNotForSale), errors.Is(err, interfaces.ErrTransferExpired),
		errors.Is(err, interfaces.ErrTransferIncomplete), errors.Is(err, interfaces.ErrNotYetExpired):
		return http.StatusPreconditionFailed
	case errors.Is(err, interfaces.ErrLedgerFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Operation failed", "op", op, "err", err)
	} else {
		h.log.Debug("Operation rejected", "op", op, "err", err)
	}
	metrics.IncOperation(op, "error")
	h.writeJSON(w, status, api.ErrorResponse{Error: err.Error()})
}

func (h *Handler) writeStatus(w http.ResponseWriter, op string) {
	metrics.IncOperation(op, "ok")
	h.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

// readBody consumes the request body up to maxBodySize. The body is needed
// before authentication because signed requests cover it.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.log.Error("Failed to read request body", "err", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

// caller authenticates the request and reports the invoking identity.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request, op string, body []byte) (interfaces.Identity, bool) {
	id, err := h.auth.Authenticate(r, body)
	if err != nil {
		h.writeError(w, op, err)
		return interfaces.Identity{}, false
	}
	return id, true
}

// assetIDParam decodes the asset id path segment. chi hands the segment back
// percent-encoded when the request carried a raw path, and ids may contain
// any printable ASCII, so it is unescaped before validation.
func (h *Handler) assetIDParam(w http.ResponseWriter, r *http.Request) (interfaces.AssetID, bool) {
	raw, err := url.PathUnescape(chi.URLParam(r, "asset_id"))
	if err != nil {
		http.Error(w, "Invalid asset id", http.StatusBadRequest)
		return "", false
	}
	id, err := interfaces.NewAssetID(raw)
	if err != nil {
		http.Error(w, "Invalid asset id", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func (h *Handler) identityParam(w http.ResponseWriter, r *http.Request) (interfaces.Identity, bool) {
	id, err := interfaces.NewIdentityFromHex(chi.URLParam(r, "identity"))
	if err != nil {
		http.Error(w, "Invalid identity", http.StatusBadRequest)
		return interfaces.Identity{}, false
	}
	return id, true
}

// HandleRegisterAsset records a new deed owned by the caller.
//
// URL format: POST /api/v1/assets
func (h *Handler) HandleRegisterAsset(w http.ResponseWriter, r *http.Request) {
	const op = "register_asset"

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	caller, ok := h.caller(w, r, op, body)
	if !ok {
		return
	}

	var req api.RegisterAssetRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	assetID, err := interfaces.NewAssetID(req.ID)
	if err != nil {
		http.Error(w, "Invalid asset id", http.StatusBadRequest)
		return
	}

	if err := h.assets.Register(assetID, req.Description, interfaces.Amount(req.Valuation), caller); err != nil {
		h.writeError(w, op, err)
		return
	}
	h.writeStatus(w, op)
}

// HandleUpdateDetails replaces the description and valuation of a deed.
//
// URL format: PUT /api/v1/assets/{asset_id}
func (h *Handler) HandleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	const op = "update_details"

	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	caller, ok := h.caller(w, r, op, body)
	if !ok {
		return
	}

	var req api.UpdateDetailsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.assets.UpdateDetails(assetID, req.Description, interfaces.Amount(req.Valuation), caller); err != nil {
		h.writeError(w, op, err)
		return
	}
	h.writeStatus(w, op)
}

// HandleListForSale marks a deed for sale at an asking price.
//
// URL format: POST /api/v1/assets/{asset_id}/list
func (h *Handler) HandleListForSale(w http.ResponseWriter, r *http.Request) {
	const op = "list_for_sale"

	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	caller, ok := h.caller(w, r, op, body)
	if !ok {
		return
	}

	var req api.ListForSaleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.assets.ListForSale(assetID, interfaces.Amount(req.AskingPrice), caller); err != nil {
		h.writeError(w, op, err)
		return
	}
	h.writeStatus(w, op)
}

// HandleDelist clears the for-sale flag of a deed.
//
// URL format: POST /api/v1/assets/{asset_id}/delist
func (h *Handler) HandleDelist(w http.ResponseWriter, r *http.Request) {
	const op = "delist"

	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	caller, ok := h.caller(w, r, op, body)
	if !ok {
		return
	}

	if err := h.assets.Delist(assetID, caller); err != nil {
		h.writeError(w, op, err)
		return
	}
	h.writeStatus(w, op)
}

// HandleGetAsset returns the deed record.
//
// URL format: GET /api/v1/assets/{asset_id}
func (h *Handler) HandleGetAsset(w http.ResponseWriter, r *http.Request) {
	const op = "get_asset"

	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}

	asset, found := h.assets.Get(assetID)
	if !found {
		h.writeError(w, op, interfaces.ErrNotFound)
		return
	}
	metrics.IncOperation(op, "ok")
	h.writeJSON(w, http.StatusOK, api.AssetResponseFrom(asset))
}

// HandleIsOwner reports whether an identity owns a deed.
//
// URL format: GET /api/v1/assets/{asset_id}/owner/{identity}
func (h *Handler) HandleIsOwner(w http.ResponseWriter, r *http.Request) {
	const op = "is_owner"

	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}
	id, ok := h.identityParam(w, r)
	if !ok {
		return
	}

	metrics.IncOperation(op, "ok")
	h.writeJSON(w, http.StatusOK, api.IsOwnerResponse{IsOwner: h.assets.IsOwner(assetID, id)})
}

// HandleInitiatePurchase opens an escrowed transfer with the caller as buyer.
//
// URL format: POST /api/v1/escrows/{asset_id}
func (h *Handler) HandleInitiatePurchase(w http.ResponseWriter, r *http.Request) {
	h.escrowAction(w, r, "initiate_purchase", h.escrows.InitiatePurchase)
}

// HandleApproveAsSeller records the seller's consent on a pending transfer.
//
// URL format: POST /api/v1/escrows/{asset_id}/approve/seller
func (h *Handler) HandleApproveAsSeller(w http.ResponseWriter, r *http.Request) {
	h.escrowAction(w, r, "approve_seller", h.escrows.ApproveAsSeller)
}

// HandleApproveAsNotary records a notary's consent on a pending transfer.
//
// URL format: POST /api/v1/escrows/{asset_id}/approve/notary
func (h *Handler) HandleApproveAsNotary(w http.ResponseWriter, r *http.Request) {
	h.escrowAction(w, r, "approve_notary", h.escrows.ApproveAsNotary)
}

// HandleComplete settles a fully approved transfer.
//
// URL format: POST /api/v1/escrows/{asset_id}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.escrowAction(w, r, "complete", h.escrows.Complete)
}

// HandleCancel aborts a pending transfer and refunds the buyer.
//
// URL format: POST /api/v1/escrows/{asset_id}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.escrowAction(w, r, "cancel", h.escrows.Cancel)
}

// HandleRefundExpired reclaims the deposit of a transfer past its window.
//
// URL format: POST /api/v1/escrows/{asset_id}/refund
func (h *Handler) HandleRefundExpired(w http.ResponseWriter, r *http.Request) {
	h.escrowAction(w, r, "refund_expired", h.escrows.RefundExpired)
}

// escrowAction is the shared shape of all escrow mutations: an asset id in
// the path, an authenticated caller, and no request body payload.
func (h *Handler) escrowAction(w http.ResponseWriter, r *http.Request, op string, action func(interfaces.AssetID, interfaces.Identity) error) {
	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	caller, ok := h.caller(w, r, op, body)
	if !ok {
		return
	}

	if err := action(assetID, caller); err != nil {
		h.writeError(w, op, err)
		return
	}
	h.writeStatus(w, op)
}

// HandleGetEscrow returns the pending transfer for a deed.
//
// URL format: GET /api/v1/escrows/{asset_id}
func (h *Handler) HandleGetEscrow(w http.ResponseWriter, r *http.Request) {
	const op = "get_escrow"

	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}

	transfer, found := h.escrows.Get(assetID)
	if !found {
		h.writeError(w, op, interfaces.ErrTransferNotFound)
		return
	}
	metrics.IncOperation(op, "ok")
	h.writeJSON(w, http.StatusOK, api.EscrowResponseFrom(transfer))
}
