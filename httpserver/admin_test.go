package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deedprotocol/escrow-backend/api"
	"github.com/deedprotocol/escrow-backend/interfaces"
)

func TestNotaryAdministration(t *testing.T) {
	f := newServerFixture(t)

	resp := f.do(t, http.MethodPost, "/api/admin/notaries", adminID, api.AddNotaryRequest{
		Notary: scrivenerID.String(), Jurisdiction: "king-county",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/admin/notaries/"+scrivenerID.String(), interfaces.Identity{}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	record := decode[api.NotaryResponse](t, resp)
	assert.Equal(t, scrivenerID.String(), record.Identity)
	assert.True(t, record.Active)
	assert.Equal(t, "king-county", record.Jurisdiction)

	// Adding the same identity twice is a conflict.
	resp = f.do(t, http.MethodPost, "/api/admin/notaries", adminID, api.AddNotaryRequest{
		Notary: scrivenerID.String(), Jurisdiction: "king-county",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/admin/notaries/"+scrivenerID.String(), adminID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/admin/notaries/"+scrivenerID.String(), interfaces.Identity{}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[api.NotaryResponse](t, resp).Active)

	// The record survives deactivation and still blocks re-adding.
	resp = f.do(t, http.MethodPost, "/api/admin/notaries", adminID, api.AddNotaryRequest{
		Notary: scrivenerID.String(), Jurisdiction: "king-county",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestNotaryAdministrationRequiresOwner(t *testing.T) {
	f := newServerFixture(t)

	resp := f.do(t, http.MethodPost, "/api/admin/notaries", sellerID, api.AddNotaryRequest{
		Notary: scrivenerID.String(), Jurisdiction: "king-county",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/admin/notaries/"+scrivenerID.String(), sellerID, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/admin/notaries/"+scrivenerID.String(), interfaces.Identity{}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTransferContractOwnership(t *testing.T) {
	f := newServerFixture(t)
	newOwner := interfaces.Identity{0x02}

	resp := f.do(t, http.MethodPost, "/api/admin/transfer-ownership", sellerID, api.TransferOwnershipRequest{
		NewOwner: newOwner.String(),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/admin/transfer-ownership", adminID, api.TransferOwnershipRequest{
		NewOwner: newOwner.String(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The previous owner lost its standing, the new one gained it.
	resp = f.do(t, http.MethodPost, "/api/admin/notaries", adminID, api.AddNotaryRequest{
		Notary: scrivenerID.String(), Jurisdiction: "king-county",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/admin/notaries", newOwner, api.AddNotaryRequest{
		Notary: scrivenerID.String(), Jurisdiction: "king-county",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
