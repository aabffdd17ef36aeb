// Package storage implements content-addressed backends used to persist
// state snapshots and the journal of terminal escrow outcomes. Backends are
// created from location URIs by the factory; the multi-backend aggregates
// several for redundancy.
package storage

import (
	"context"
	"sync"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// MemoryBackend keeps content in process memory. Used in tests and as a
// scratch backend for single-run tooling.
type MemoryBackend struct {
	mu      sync.Mutex
	content map[interfaces.ContentType]map[interfaces.ContentID][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		content: make(map[interfaces.ContentType]map[interfaces.ContentID][]byte),
	}
}

// Fetch retrieves data by content ID and type.
func (b *MemoryBackend) Fetch(_ context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.content[contentType][id]
	if !ok {
		return nil, interfaces.ErrContentNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Store saves data and returns its content ID.
func (b *MemoryBackend) Store(_ context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.content[contentType] == nil {
		b.content[contentType] = make(map[interfaces.ContentID][]byte)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	b.content[contentType][id] = stored
	return id, nil
}

// Available always reports true.
func (b *MemoryBackend) Available(context.Context) bool {
	return true
}

// Name returns the backend identifier for logging.
func (b *MemoryBackend) Name() string {
	return "memory"
}

// LocationURI returns the URI identifying this backend.
func (b *MemoryBackend) LocationURI() string {
	return "mem://"
}
