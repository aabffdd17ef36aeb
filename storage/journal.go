package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// journalEntry is the persisted form of one terminal outcome. Each entry
// names its predecessor by content id, so the head pointer derives the whole
// append-ordered chain.
type journalEntry struct {
	Outcome interfaces.EscrowOutcome `json:"outcome"`
	Prev    string                   `json:"prev,omitempty"`
}

// Journal persists terminal escrow outcomes as a content-addressed chain.
// The pending escrow record is deleted at settlement, so this chain is the
// audit trail of what the engine decided.
type Journal struct {
	backend  interfaces.StorageBackend
	headPath string
	log      *slog.Logger

	mu      sync.Mutex
	head    interfaces.ContentID
	hasHead bool
}

// NewJournal opens a journal over the given backend, resuming from the head
// pointer file if one exists.
func NewJournal(backend interfaces.StorageBackend, headPath string, log *slog.Logger) (*Journal, error) {
	if log == nil {
		log = slog.Default()
	}
	j := &Journal{backend: backend, headPath: headPath, log: log}

	raw, err := os.ReadFile(headPath)
	if errors.Is(err, os.ErrNotExist) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal head: %w", err)
	}

	head, err := interfaces.NewContentIDFromHex(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("corrupt journal head: %w", err)
	}
	j.head = head
	j.hasHead = true
	return j, nil
}

// RecordOutcome appends one outcome to the chain and advances the head.
func (j *Journal) RecordOutcome(outcome interfaces.EscrowOutcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := journalEntry{Outcome: outcome}
	if j.hasHead {
		entry.Prev = j.head.String()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}

	id, err := j.backend.Store(context.Background(), data, interfaces.JournalType)
	if err != nil {
		return fmt.Errorf("failed to store journal entry: %w", err)
	}

	if err := os.WriteFile(j.headPath, []byte(id.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to update journal head: %w", err)
	}

	j.head = id
	j.hasHead = true

	j.log.Info("escrow outcome journaled",
		slog.String("asset", outcome.AssetID.String()),
		slog.String("outcome", outcome.Outcome),
		slog.String("content_id", id.String()))
	return nil
}

// Outcomes walks the chain from the head and returns all recorded outcomes,
// oldest first.
func (j *Journal) Outcomes(ctx context.Context) ([]interfaces.EscrowOutcome, error) {
	j.mu.Lock()
	head, hasHead := j.head, j.hasHead
	j.mu.Unlock()

	var out []interfaces.EscrowOutcome
	for hasHead {
		data, err := j.backend.Fetch(ctx, head, interfaces.JournalType)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch journal entry %s: %w", head, err)
		}

		var entry journalEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode journal entry %s: %w", head, err)
		}
		out = append(out, entry.Outcome)

		if entry.Prev == "" {
			break
		}
		head, err = interfaces.NewContentIDFromHex(entry.Prev)
		if err != nil {
			return nil, fmt.Errorf("corrupt journal link %q: %w", entry.Prev, err)
		}
	}

	// The walk yields newest first.
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}
