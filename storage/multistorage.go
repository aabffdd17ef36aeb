package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// MultiStorageBackend aggregates several backends: stores go to every
// available backend, fetches return the first hit.
type MultiStorageBackend struct {
	backends []interfaces.StorageBackend
	log      *slog.Logger
}

// NewMultiStorageBackend creates a multi-storage backend with fallback.
func NewMultiStorageBackend(backends []interfaces.StorageBackend, log *slog.Logger) *MultiStorageBackend {
	if log == nil {
		log = slog.Default()
	}
	return &MultiStorageBackend{
		backends: backends,
		log:      log,
	}
}

// Fetch returns the content from the first backend that has it.
func (m *MultiStorageBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("backend unavailable", slog.String("backend", backend.Name()))
			continue
		}

		data, err := backend.Fetch(ctx, id, contentType)
		if err == nil {
			return data, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
	}

	if len(errs) == 0 {
		return nil, interfaces.ErrContentNotFound
	}
	return nil, fmt.Errorf("all backends failed to fetch %s: %v", id, errs)
}

// Store saves data to all available backends. It succeeds if at least one
// backend accepted the write.
func (m *MultiStorageBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	var result interfaces.ContentID
	var success bool
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("backend unavailable", slog.String("backend", backend.Name()))
			continue
		}

		id, err := backend.Store(ctx, data, contentType)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			continue
		}
		if !success {
			result = id
			success = true
		}
	}

	if !success {
		return result, fmt.Errorf("all backends failed to store data: %v", errs)
	}
	if len(errs) > 0 {
		m.log.Warn("some backends failed to store data",
			slog.Int("failed", len(errs)),
			slog.String("content_id", result.String()))
	}
	return result, nil
}

// Available reports whether any backend is available.
func (m *MultiStorageBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns the aggregated backend names.
func (m *MultiStorageBackend) Name() string {
	names := make([]string, 0, len(m.backends))
	for _, backend := range m.backends {
		names = append(names, backend.Name())
	}
	return fmt.Sprintf("multi[%s]", strings.Join(names, ","))
}

// LocationURI returns the aggregated backend URIs.
func (m *MultiStorageBackend) LocationURI() string {
	uris := make([]string, 0, len(m.backends))
	for _, backend := range m.backends {
		uris = append(uris, backend.LocationURI())
	}
	return strings.Join(uris, ",")
}
