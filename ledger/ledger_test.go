package ledger

import (
	"testing"

	"github.com/deedprotocol/escrow-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = interfaces.Identity{0xa1}
	bob   = interfaces.Identity{0xb0}
)

func TestTransferMovesFunds(t *testing.T) {
	l := NewInMemory(nil)
	l.Credit(alice, 100)

	require.NoError(t, l.Transfer(60, alice, bob))
	assert.Equal(t, interfaces.Amount(40), l.BalanceOf(alice))
	assert.Equal(t, interfaces.Amount(60), l.BalanceOf(bob))
}

func TestTransferOverdraft(t *testing.T) {
	l := NewInMemory(nil)
	l.Credit(alice, 10)

	err := l.Transfer(11, alice, bob)
	require.ErrorIs(t, err, interfaces.ErrInsufficientFunds)

	// No partial effect.
	assert.Equal(t, interfaces.Amount(10), l.BalanceOf(alice))
	assert.Equal(t, interfaces.Amount(0), l.BalanceOf(bob))
}

func TestUnknownAccountHasZeroBalance(t *testing.T) {
	l := NewInMemory(nil)
	assert.Equal(t, interfaces.Amount(0), l.BalanceOf(interfaces.Identity{0xff}))
	assert.ErrorIs(t, l.Transfer(1, alice, bob), interfaces.ErrInsufficientFunds)
}

func TestZeroTransfer(t *testing.T) {
	l := NewInMemory(nil)
	require.NoError(t, l.Transfer(0, alice, bob))
	assert.Equal(t, interfaces.Amount(0), l.BalanceOf(bob))
}
