package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/deedprotocol/escrow-backend/api"
	"github.com/deedprotocol/escrow-backend/interfaces"
	"github.com/deedprotocol/escrow-backend/metrics"
)

// HandleAddNotary authorizes a new notary. Contract owner only.
//
// URL format: POST /api/admin/notaries
func (h *Handler) HandleAddNotary(w http.ResponseWriter, r *http.Request) {
	const op = "add_notary"

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	caller, ok := h.caller(w, r, op, body)
	if !ok {
		return
	}

	var req api.AddNotaryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	notary, err := interfaces.NewIdentityFromHex(req.Notary)
	if err != nil {
		http.Error(w, "Invalid notary identity", http.StatusBadRequest)
		return
	}

	if err := h.notaries.Add(notary, req.Jurisdiction, caller); err != nil {
		h.writeError(w, op, err)
		return
	}
	h.writeStatus(w, op)
}

// HandleDeactivateNotary revokes a notary's standing. Contract owner only.
// The record is kept so the identity can never be re-added.
//
// URL format: DELETE /api/admin/notaries/{identity}
func (h *Handler) HandleDeactivateNotary(w http.ResponseWriter, r *http.Request) {
	const op = "deactivate_notary"

	notary, ok := h.identityParam(w, r)
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

	if err := h.notaries.Deactivate(notary, caller); err != nil {
		h.writeError(w, op, err)
		return
	}
	h.writeStatus(w, op)
}

// HandleGetNotary returns a notary record.
//
// URL format: GET /api/admin/notaries/{identity}
func (h *Handler) HandleGetNotary(w http.ResponseWriter, r *http.Request) {
	const op = "get_notary"

	notary, ok := h.identityParam(w, r)
	if !ok {
		return
	}

	record, found := h.notaries.Get(notary)
	if !found {
		h.writeError(w, op, interfaces.ErrNotNotary)
		return
	}
	metrics.IncOperation(op, "ok")
	h.writeJSON(w, http.StatusOK, api.NotaryResponseFrom(record))
}

// HandleTransferOwnership reassigns the contract owner. Current owner only.
//
// URL format: POST /api/admin/transfer-ownership
func (h *Handler) HandleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	const op = "transfer_ownership"

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	caller, ok := h.caller(w, r, op, body)
	if !ok {
		return
	}

	var req api.TransferOwnershipRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	newOwner, err := interfaces.NewIdentityFromHex(req.NewOwner)
	if err != nil {
		http.Error(w, "Invalid owner identity", http.StatusBadRequest)
		return
	}

	if err := h.access.TransferOwnership(newOwner, caller); err != nil {
		h.writeError(w, op, err)
		return
	}
	h.writeStatus(w, op)
}
