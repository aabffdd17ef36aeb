package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// State is the serializable system state: every entity the components own.
// The funds ledger is an external collaborator and is not part of it.
type State struct {
	Owner    interfaces.Identity         `json:"owner"`
	Assets   []interfaces.Asset          `json:"assets"`
	Notaries []interfaces.NotaryRecord   `json:"notaries"`
	Escrows  []interfaces.EscrowTransfer `json:"escrows"`
	TakenAt  interfaces.Timestamp        `json:"taken_at"`
}

// AssetSource exposes asset state for persistence.
type AssetSource interface {
	Snapshot() []interfaces.Asset
	Restore([]interfaces.Asset)
}

// NotarySource exposes notary state for persistence.
type NotarySource interface {
	Snapshot() []interfaces.NotaryRecord
	Restore([]interfaces.NotaryRecord)
}

// EscrowSource exposes pending transfer state for persistence.
type EscrowSource interface {
	Snapshot() []interfaces.EscrowTransfer
	Restore([]interfaces.EscrowTransfer)
}

// OwnerSource exposes the contract-owner singleton for persistence.
type OwnerSource interface {
	Owner() interfaces.Identity
	Restore(interfaces.Identity)
}

// Snapshotter periodically persists full-state snapshots through a storage
// backend. Content addressing makes snapshots immutable; a small pointer
// file tracks the latest content ID for restarts.
type Snapshotter struct {
	backend     interfaces.StorageBackend
	pointerPath string
	clock       interfaces.Clock
	log         *slog.Logger

	assets   AssetSource
	notaries NotarySource
	escrows  EscrowSource
	access   OwnerSource
}

// NewSnapshotter wires a snapshotter over the given sources.
func NewSnapshotter(
	backend interfaces.StorageBackend,
	pointerPath string,
	clock interfaces.Clock,
	assets AssetSource,
	notaries NotarySource,
	escrows EscrowSource,
	access OwnerSource,
	log *slog.Logger,
) *Snapshotter {
	if log == nil {
		log = slog.Default()
	}
	return &Snapshotter{
		backend:     backend,
		pointerPath: pointerPath,
		clock:       clock,
		log:         log,
		assets:      assets,
		notaries:    notaries,
		escrows:     escrows,
		access:      access,
	}
}

// Save stores a snapshot of the current state and updates the pointer file.
func (s *Snapshotter) Save(ctx context.Context) (interfaces.ContentID, error) {
	state := State{
		Owner:    s.access.Owner(),
		Assets:   s.assets.Snapshot(),
		Notaries: s.notaries.Snapshot(),
		Escrows:  s.escrows.Snapshot(),
		TakenAt:  s.clock.Now(),
	}

	data, err := json.Marshal(state)
	if err != nil {
		return interfaces.ContentID{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	id, err := s.backend.Store(ctx, data, interfaces.SnapshotType)
	if err != nil {
		return id, fmt.Errorf("failed to store snapshot: %w", err)
	}

	if err := os.WriteFile(s.pointerPath, []byte(id.String()+"\n"), 0644); err != nil {
		return id, fmt.Errorf("failed to update snapshot pointer: %w", err)
	}

	s.log.Info("snapshot saved",
		slog.String("content_id", id.String()),
		slog.Int("assets", len(state.Assets)),
		slog.Int("escrows", len(state.Escrows)))
	return id, nil
}

// RestoreLatest loads the snapshot named by the pointer file into the
// sources. A missing pointer file is not an error; there is simply nothing
// to restore yet.
func (s *Snapshotter) RestoreLatest(ctx context.Context) error {
	raw, err := os.ReadFile(s.pointerPath)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Info("no snapshot pointer, starting fresh",
			slog.String("path", s.pointerPath))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot pointer: %w", err)
	}

	id, err := interfaces.NewContentIDFromHex(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("corrupt snapshot pointer: %w", err)
	}

	data, err := s.backend.Fetch(ctx, id, interfaces.SnapshotType)
	if err != nil {
		return fmt.Errorf("failed to fetch snapshot %s: %w", id, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}

	s.assets.Restore(state.Assets)
	s.notaries.Restore(state.Notaries)
	s.escrows.Restore(state.Escrows)
	s.access.Restore(state.Owner)

	s.log.Info("snapshot restored",
		slog.String("content_id", id.String()),
		slog.Int("assets", len(state.Assets)),
		slog.Int("notaries", len(state.Notaries)),
		slog.Int("escrows", len(state.Escrows)))
	return nil
}

// Run saves snapshots on the given interval until the context is cancelled,
// then takes a final snapshot.
func (s *Snapshotter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if _, err := s.Save(context.Background()); err != nil {
				s.log.Error("final snapshot failed", "err", err)
			}
			return
		case <-ticker.C:
			if _, err := s.Save(ctx); err != nil {
				s.log.Error("periodic snapshot failed", "err", err)
			}
		}
	}
}
