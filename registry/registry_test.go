package registry

import (
	"strings"
	"testing"

	"github.com/deedprotocol/escrow-backend/clock"
	"github.com/deedprotocol/escrow-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = interfaces.Identity{0x0a}
	stranger = interfaces.Identity{0x0b}
)

func newRegistry(start interfaces.Timestamp) (*Registry, *clock.Manual) {
	c := clock.NewManual(start)
	return New(c, nil), c
}

func TestRegisterRoundTrip(t *testing.T) {
	r, _ := newRegistry(77)
	require.NoError(t, r.Register("parcel-1", "two hectares, riverside", 5000, owner))

	asset, ok := r.Get("parcel-1")
	require.True(t, ok)
	assert.Equal(t, owner, asset.Owner)
	assert.Equal(t, "two hectares, riverside", asset.Description)
	assert.Equal(t, interfaces.Amount(5000), asset.Valuation)
	assert.False(t, asset.ForSale)
	assert.Equal(t, interfaces.Amount(0), asset.AskingPrice)
	assert.Equal(t, interfaces.Timestamp(77), asset.CreatedAt)
	assert.Equal(t, interfaces.Timestamp(77), asset.LastTransfer)
}

func TestRegisterDuplicateID(t *testing.T) {
	r, _ := newRegistry(0)
	require.NoError(t, r.Register("parcel-1", "original", 100, owner))

	err := r.Register("parcel-1", "squatter", 999, stranger)
	require.ErrorIs(t, err, interfaces.ErrAlreadyExists)

	// Original record untouched.
	asset, ok := r.Get("parcel-1")
	require.True(t, ok)
	assert.Equal(t, owner, asset.Owner)
	assert.Equal(t, "original", asset.Description)
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newRegistry(0)
	assert.Error(t, r.Register("", "no id", 1, owner))
	assert.Error(t, r.Register(interfaces.AssetID(strings.Repeat("x", 37)), "long id", 1, owner))
	assert.Error(t, r.Register("parcel-1", strings.Repeat("d", 501), 1, owner))
}

func TestOwnerGating(t *testing.T) {
	r, _ := newRegistry(0)
	require.NoError(t, r.Register("parcel-1", "d", 100, owner))

	assert.ErrorIs(t, r.UpdateDetails("parcel-1", "x", 1, stranger), interfaces.ErrNotOwner)
	assert.ErrorIs(t, r.ListForSale("parcel-1", 50, stranger), interfaces.ErrNotOwner)
	assert.ErrorIs(t, r.Delist("parcel-1", stranger), interfaces.ErrNotOwner)

	assert.ErrorIs(t, r.UpdateDetails("missing", "x", 1, owner), interfaces.ErrNotFound)
	assert.ErrorIs(t, r.ListForSale("missing", 50, owner), interfaces.ErrNotFound)
	assert.ErrorIs(t, r.Delist("missing", owner), interfaces.ErrNotFound)
}

func TestUpdateDetailsLeavesSaleStatus(t *testing.T) {
	r, _ := newRegistry(0)
	require.NoError(t, r.Register("parcel-1", "d", 100, owner))
	require.NoError(t, r.ListForSale("parcel-1", 50, owner))

	require.NoError(t, r.UpdateDetails("parcel-1", "renovated", 200, owner))

	asset, _ := r.Get("parcel-1")
	assert.Equal(t, "renovated", asset.Description)
	assert.Equal(t, interfaces.Amount(200), asset.Valuation)
	assert.True(t, asset.ForSale)
	assert.Equal(t, interfaces.Amount(50), asset.AskingPrice)
}

func TestListAndDelist(t *testing.T) {
	r, _ := newRegistry(0)
	require.NoError(t, r.Register("parcel-1", "d", 100, owner))

	// Zero asking price is accepted.
	require.NoError(t, r.ListForSale("parcel-1", 0, owner))
	asset, _ := r.Get("parcel-1")
	assert.True(t, asset.ForSale)
	assert.Equal(t, interfaces.Amount(0), asset.AskingPrice)

	require.NoError(t, r.ListForSale("parcel-1", 750, owner))
	require.NoError(t, r.Delist("parcel-1", owner))

	asset, _ = r.Get("parcel-1")
	assert.False(t, asset.ForSale)
	// Stale asking price remains but is unreachable while delisted.
	assert.Equal(t, interfaces.Amount(750), asset.AskingPrice)
}

func TestIsOwner(t *testing.T) {
	r, _ := newRegistry(0)
	require.NoError(t, r.Register("parcel-1", "d", 100, owner))

	assert.True(t, r.IsOwner("parcel-1", owner))
	assert.False(t, r.IsOwner("parcel-1", stranger))
	assert.False(t, r.IsOwner("missing", owner))
}

func TestTransfer(t *testing.T) {
	r, c := newRegistry(10)
	require.NoError(t, r.Register("parcel-1", "d", 100, owner))
	require.NoError(t, r.ListForSale("parcel-1", 50, owner))

	c.Advance(30)
	require.NoError(t, r.Transfer("parcel-1", stranger, c.Now()))

	asset, _ := r.Get("parcel-1")
	assert.Equal(t, stranger, asset.Owner)
	assert.False(t, asset.ForSale)
	assert.Equal(t, interfaces.Timestamp(40), asset.LastTransfer)
	assert.Equal(t, interfaces.Timestamp(10), asset.CreatedAt)

	assert.ErrorIs(t, r.Transfer("missing", stranger, c.Now()), interfaces.ErrNotFound)
}

func TestSnapshotRestore(t *testing.T) {
	r, _ := newRegistry(0)
	require.NoError(t, r.Register("parcel-2", "b", 2, owner))
	require.NoError(t, r.Register("parcel-1", "a", 1, owner))

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, interfaces.AssetID("parcel-1"), snap[0].ID)

	restored, _ := newRegistry(0)
	restored.Restore(snap)
	asset, ok := restored.Get("parcel-2")
	require.True(t, ok)
	assert.Equal(t, "b", asset.Description)
}
