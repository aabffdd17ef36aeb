package ledger

import (
	"github.com/deedprotocol/escrow-backend/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockLedger mocks the FundsLedger interface for failure injection in tests.
type MockLedger struct {
	mock.Mock
}

// BalanceOf mocks the BalanceOf method.
func (m *MockLedger) BalanceOf(id interfaces.Identity) interfaces.Amount {
	args := m.Called(id)
	return args.Get(0).(interfaces.Amount)
}

// Transfer mocks the Transfer method.
func (m *MockLedger) Transfer(amount interfaces.Amount, from, to interfaces.Identity) error {
	args := m.Called(amount, from, to)
	return args.Error(0)
}
