package notary

import (
	"strings"
	"testing"

	"github.com/deedprotocol/escrow-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	deployer = interfaces.Identity{0x01}
	pretender = interfaces.Identity{0x02}
	scrivener = interfaces.Identity{0x03}
)

func newNotaryRegistry() *Registry {
	return New(NewAccess(deployer, nil), nil)
}

func TestAddRequiresContractOwner(t *testing.T) {
	r := newNotaryRegistry()

	err := r.Add(scrivener, "EU-PT", pretender)
	require.ErrorIs(t, err, interfaces.ErrNotAuthorized)
	assert.False(t, r.IsActive(scrivener))

	require.NoError(t, r.Add(scrivener, "EU-PT", deployer))
	assert.True(t, r.IsActive(scrivener))

	rec, ok := r.Get(scrivener)
	require.True(t, ok)
	assert.Equal(t, "EU-PT", rec.Jurisdiction)
	assert.True(t, rec.Active)
}

func TestAddDuplicate(t *testing.T) {
	r := newNotaryRegistry()
	require.NoError(t, r.Add(scrivener, "EU-PT", deployer))

	err := r.Add(scrivener, "EU-ES", deployer)
	assert.ErrorIs(t, err, interfaces.ErrAlreadyAuthorized)
}

func TestAddJurisdictionValidation(t *testing.T) {
	r := newNotaryRegistry()
	assert.Error(t, r.Add(scrivener, strings.Repeat("j", 51), deployer))
}

func TestDeactivate(t *testing.T) {
	r := newNotaryRegistry()
	require.NoError(t, r.Add(scrivener, "EU-PT", deployer))

	assert.ErrorIs(t, r.Deactivate(scrivener, pretender), interfaces.ErrNotAuthorized)
	assert.ErrorIs(t, r.Deactivate(pretender, deployer), interfaces.ErrNotNotary)

	require.NoError(t, r.Deactivate(scrivener, deployer))
	assert.False(t, r.IsActive(scrivener))

	// Record is kept, just inactive.
	rec, ok := r.Get(scrivener)
	require.True(t, ok)
	assert.False(t, rec.Active)
}

func TestNoReactivationPath(t *testing.T) {
	r := newNotaryRegistry()
	require.NoError(t, r.Add(scrivener, "EU-PT", deployer))
	require.NoError(t, r.Deactivate(scrivener, deployer))

	// Re-adding a deactivated notary is rejected; the record blocks it.
	err := r.Add(scrivener, "EU-PT", deployer)
	assert.ErrorIs(t, err, interfaces.ErrAlreadyAuthorized)
	assert.False(t, r.IsActive(scrivener))
}

func TestIsActiveUnknownIdentity(t *testing.T) {
	r := newNotaryRegistry()
	assert.False(t, r.IsActive(pretender))

	_, ok := r.Get(pretender)
	assert.False(t, ok)
}

func TestTransferOwnership(t *testing.T) {
	access := NewAccess(deployer, nil)
	r := New(access, nil)

	assert.ErrorIs(t, access.TransferOwnership(pretender, pretender), interfaces.ErrNotAuthorized)
	require.NoError(t, access.TransferOwnership(pretender, deployer))
	assert.Equal(t, pretender, access.Owner())

	// Old owner lost its authority, new owner gained it.
	assert.ErrorIs(t, r.Add(scrivener, "EU-PT", deployer), interfaces.ErrNotAuthorized)
	require.NoError(t, r.Add(scrivener, "EU-PT", pretender))
}

func TestSnapshotRestore(t *testing.T) {
	r := newNotaryRegistry()
	require.NoError(t, r.Add(scrivener, "EU-PT", deployer))
	require.NoError(t, r.Add(pretender, "EU-ES", deployer))
	require.NoError(t, r.Deactivate(pretender, deployer))

	snap := r.Snapshot()
	require.Len(t, snap, 2)

	restored := newNotaryRegistry()
	restored.Restore(snap)
	assert.True(t, restored.IsActive(scrivener))
	assert.False(t, restored.IsActive(pretender))

	rec, ok := restored.Get(pretender)
	require.True(t, ok)
	assert.False(t, rec.Active)
}
