// Package registry implements the deed registry: it exclusively owns asset
// records and their sale status. It is a leaf component; the escrow engine
// reads and, on completed transfers, mutates ownership through it.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// Registry is the in-memory asset registry. All operations are atomic under
// a single mutex; assets are never deleted and ids are never reused.
type Registry struct {
	mu     sync.Mutex
	assets map[interfaces.AssetID]interfaces.Asset

	clock interfaces.Clock
	log   *slog.Logger
}

// New creates an empty registry.
func New(clock interfaces.Clock, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		assets: make(map[interfaces.AssetID]interfaces.Asset),
		clock:  clock,
		log:    log,
	}
}

// Register creates an asset owned by the caller. The asset starts not for
// sale with a zero asking price and both timestamps set to now.
func (r *Registry) Register(id interfaces.AssetID, description string, valuation interfaces.Amount, caller interfaces.Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if err := interfaces.ValidateDescription(description); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[id]; ok {
		return fmt.Errorf("%w: %s", interfaces.ErrAlreadyExists, id)
	}

	now := r.clock.Now()
	r.assets[id] = interfaces.Asset{
		ID:           id,
		Owner:        caller,
		Description:  description,
		Valuation:    valuation,
		CreatedAt:    now,
		LastTransfer: now,
	}

	r.log.Info("asset registered",
		slog.String("asset", id.String()),
		slog.String("owner", caller.String()))
	return nil
}

// UpdateDetails replaces the description and valuation. Only the owner may
// call it; sale status and timestamps are untouched.
func (r *Registry) UpdateDetails(id interfaces.AssetID, description string, valuation interfaces.Amount, caller interfaces.Identity) error {
	if err := interfaces.ValidateDescription(description); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	asset, err := r.ownedBy(id, caller)
	if err != nil {
		return err
	}

	asset.Description = description
	asset.Valuation = valuation
	r.assets[id] = asset
	return nil
}

// ListForSale marks the asset for sale at the asking price. A zero asking
// price is accepted; the listing operation does not judge the price.
func (r *Registry) ListForSale(id interfaces.AssetID, askingPrice interfaces.Amount, caller interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, err := r.ownedBy(id, caller)
	if err != nil {
		return err
	}

	asset.ForSale = true
	asset.AskingPrice = askingPrice
	r.assets[id] = asset

	r.log.Info("asset listed",
		slog.String("asset", id.String()),
		slog.Uint64("asking_price", uint64(askingPrice)))
	return nil
}

// Delist clears the for-sale flag. The asking price is left as a stale
// artifact; it is unreachable while the flag is down.
func (r *Registry) Delist(id interfaces.AssetID, caller interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, err := r.ownedBy(id, caller)
	if err != nil {
		return err
	}

	asset.ForSale = false
	r.assets[id] = asset
	return nil
}

// Get returns the asset record, or false if the id is unknown.
func (r *Registry) Get(id interfaces.AssetID) (interfaces.Asset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[id]
	return asset, ok
}

// IsOwner reports whether the identity owns the asset. Unknown ids return
// false rather than an error.
func (r *Registry) IsOwner(id interfaces.AssetID, identity interfaces.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[id]
	return ok && asset.Owner.Equal(identity)
}

// Transfer reassigns ownership, clears the for-sale flag, and stamps the
// last-transfer time. Called by the escrow engine on completion.
func (r *Registry) Transfer(id interfaces.AssetID, newOwner interfaces.Identity, at interfaces.Timestamp) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[id]
	if !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrNotFound, id)
	}

	asset.Owner = newOwner
	asset.ForSale = false
	asset.LastTransfer = at
	r.assets[id] = asset

	r.log.Info("asset ownership transferred",
		slog.String("asset", id.String()),
		slog.String("new_owner", newOwner.String()))
	return nil
}

// ownedBy looks an asset up and checks the caller owns it. The registry
// mutex must be held.
func (r *Registry) ownedBy(id interfaces.AssetID, caller interfaces.Identity) (interfaces.Asset, error) {
	asset, ok := r.assets[id]
	if !ok {
		return interfaces.Asset{}, fmt.Errorf("%w: %s", interfaces.ErrNotFound, id)
	}
	if !asset.Owner.Equal(caller) {
		return interfaces.Asset{}, fmt.Errorf("%w: %s", interfaces.ErrNotOwner, id)
	}
	return asset, nil
}

// Snapshot returns all asset records ordered by id, for persistence.
func (r *Registry) Snapshot() []interfaces.Asset {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]interfaces.Asset, 0, len(r.assets))
	for _, asset := range r.assets {
		out = append(out, asset)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Restore replaces the registry contents with a snapshot.
func (r *Registry) Restore(assets []interfaces.Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assets = make(map[interfaces.AssetID]interfaces.Asset, len(assets))
	for _, asset := range assets {
		r.assets[asset.ID] = asset
	}
}
