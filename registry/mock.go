package registry

import (
	"github.com/deedprotocol/escrow-backend/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockAssetRegistry mocks the AssetRegistry interface.
type MockAssetRegistry struct {
	mock.Mock
}

// Register mocks the Register method.
func (m *MockAssetRegistry) Register(id interfaces.AssetID, description string, valuation interfaces.Amount, caller interfaces.Identity) error {
	args := m.Called(id, description, valuation, caller)
	return args.Error(0)
}

// UpdateDetails mocks the UpdateDetails method.
func (m *MockAssetRegistry) UpdateDetails(id interfaces.AssetID, description string, valuation interfaces.Amount, caller interfaces.Identity) error {
	args := m.Called(id, description, valuation, caller)
	return args.Error(0)
}

// ListForSale mocks the ListForSale method.
func (m *MockAssetRegistry) ListForSale(id interfaces.AssetID, askingPrice interfaces.Amount, caller interfaces.Identity) error {
	args := m.Called(id, askingPrice, caller)
	return args.Error(0)
}

// Delist mocks the Delist method.
func (m *MockAssetRegistry) Delist(id interfaces.AssetID, caller interfaces.Identity) error {
	args := m.Called(id, caller)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockAssetRegistry) Get(id interfaces.AssetID) (interfaces.Asset, bool) {
	args := m.Called(id)
	return args.Get(0).(interfaces.Asset), args.Bool(1)
}

// IsOwner mocks the IsOwner method.
func (m *MockAssetRegistry) IsOwner(id interfaces.AssetID, identity interfaces.Identity) bool {
	args := m.Called(id, identity)
	return args.Bool(0)
}

// Transfer mocks the Transfer method.
func (m *MockAssetRegistry) Transfer(id interfaces.AssetID, newOwner interfaces.Identity, at interfaces.Timestamp) error {
	args := m.Called(id, newOwner, at)
	return args.Error(0)
}
