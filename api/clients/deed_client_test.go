package clients

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deedprotocol/escrow-backend/clock"
	"github.com/deedprotocol/escrow-backend/escrow"
	"github.com/deedprotocol/escrow-backend/httpserver"
	"github.com/deedprotocol/escrow-backend/identity"
	"github.com/deedprotocol/escrow-backend/interfaces"
	"github.com/deedprotocol/escrow-backend/ledger"
	"github.com/deedprotocol/escrow-backend/notary"
	"github.com/deedprotocol/escrow-backend/registry"
)

// startServer runs a registry with signature authentication and returns its
// base URL.
func startServer(t *testing.T, admin interfaces.Identity, fund func(*ledger.InMemory)) string {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewManual(100)
	assets := registry.New(clk, log)
	access := notary.NewAccess(admin, log)
	notaries := notary.New(access, log)
	funds := ledger.NewInMemory(log)
	if fund != nil {
		fund(funds)
	}
	engine := escrow.New(assets, notaries, funds, clk, interfaces.Identity{0xee}, log)

	handler := httpserver.NewHandler(assets, notaries, engine, access, identity.SignatureAuthenticator{}, log)
	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      log,
		GracefulShutdownDuration: time.Second,
		ReadTimeout:              time.Second,
		WriteTimeout:             time.Second,
	}, handler)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestSignedClientRoundTrip(t *testing.T) {
	sellerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	buyerKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	sellerID := interfaces.Identity(crypto.PubkeyToAddress(sellerKey.PublicKey))
	buyerID := interfaces.Identity(crypto.PubkeyToAddress(buyerKey.PublicKey))

	url := startServer(t, interfaces.Identity{0x01}, func(funds *ledger.InMemory) {
		funds.Credit(buyerID, 500)
	})

	seller := &DeedClient{ServerAddr: url, PrivateKey: sellerKey}
	buyer := &DeedClient{ServerAddr: url, PrivateKey: buyerKey}

	require.NoError(t, seller.RegisterAsset("parcel-9", "9 Elm St", 300))
	require.NoError(t, seller.ListForSale("parcel-9", 250))

	asset, err := buyer.GetAsset("parcel-9")
	require.NoError(t, err)
	assert.Equal(t, sellerID.String(), asset.Owner)
	assert.True(t, asset.ForSale)

	require.NoError(t, buyer.InitiatePurchase("parcel-9"))

	tr, err := buyer.GetEscrow("parcel-9")
	require.NoError(t, err)
	assert.Equal(t, buyerID.String(), tr.Buyer)
	assert.True(t, tr.BuyerApproved)

	// The signature identifies the caller, so the seller's approval comes
	// from the seller's key.
	require.NoError(t, seller.ApproveAsSeller("parcel-9"))

	tr, err = buyer.GetEscrow("parcel-9")
	require.NoError(t, err)
	assert.True(t, tr.SellerApproved)

	require.NoError(t, buyer.Cancel("parcel-9"))
	_, err = buyer.GetEscrow("parcel-9")
	assert.Error(t, err)
}

func TestHeaderClientAdminFlow(t *testing.T) {
	admin := interfaces.Identity{0x01}
	scrivener := interfaces.Identity{0x0c}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewManual(100)
	assets := registry.New(clk, log)
	access := notary.NewAccess(admin, log)
	notaries := notary.New(access, log)
	funds := ledger.NewInMemory(log)
	engine := escrow.New(assets, notaries, funds, clk, interfaces.Identity{0xee}, log)

	handler := httpserver.NewHandler(assets, notaries, engine, access, identity.HeaderAuthenticator{}, log)
	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      log,
		GracefulShutdownDuration: time.Second,
		ReadTimeout:              time.Second,
		WriteTimeout:             time.Second,
	}, handler)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	client := &DeedClient{ServerAddr: ts.URL, Caller: admin}

	require.NoError(t, client.AddNotary(scrivener, "king-county"))

	record, err := client.GetNotary(scrivener)
	require.NoError(t, err)
	assert.True(t, record.Active)
	assert.Equal(t, "king-county", record.Jurisdiction)

	require.NoError(t, client.DeactivateNotary(scrivener))
	record, err = client.GetNotary(scrivener)
	require.NoError(t, err)
	assert.False(t, record.Active)
}

func TestSignedClientEscapesAssetIDs(t *testing.T) {
	sellerKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	url := startServer(t, interfaces.Identity{0x01}, nil)
	seller := &DeedClient{ServerAddr: url, PrivateKey: sellerKey}

	// Slashes, query metacharacters and percent signs are all legal in an
	// asset id and must survive the round trip through the URL path.
	const id = "lot/7a?rev=2%final"

	require.NoError(t, seller.RegisterAsset(id, "subdivided lot", 80))
	require.NoError(t, seller.ListForSale(id, 60))

	asset, err := seller.GetAsset(id)
	require.NoError(t, err)
	assert.Equal(t, id, asset.ID)
	assert.True(t, asset.ForSale)

	require.NoError(t, seller.Delist(id))

	asset, err = seller.GetAsset(id)
	require.NoError(t, err)
	assert.False(t, asset.ForSale)
}
