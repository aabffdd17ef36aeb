package storage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// Factory creates storage backends from location URIs.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a storage backend factory.
func NewFactory(log *slog.Logger) *Factory {
	if log == nil {
		log = slog.Default()
	}
	return &Factory{log: log}
}

// StorageBackendFor creates a storage backend from a parsed location URI.
//
// Supported schemes:
//   - file:///var/lib/deeds — local filesystem storage
//   - s3://bucket/prefix?region=eu-west-1&endpoint=...&access_key=...&secret_key=... — S3 or compatible
//   - mem:// — in-process memory, for tests and tooling
func (f *Factory) StorageBackendFor(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	switch strings.ToLower(location.Scheme) {
	case "file":
		return NewFileBackend(location.Host+location.Path, f.log)
	case "s3":
		return f.createS3Backend(location)
	case "mem":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme %q", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// CreateMultiBackend creates a multi-storage backend from several URIs,
// skipping the ones that fail to construct. At least one must succeed.
func (f *Factory) CreateMultiBackend(locations []interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	backends := make([]interfaces.StorageBackend, 0, len(locations))

	for _, location := range locations {
		backend, err := f.StorageBackendFor(location)
		if err != nil {
			f.log.Warn("failed to create storage backend",
				"err", err,
				slog.String("location", location.String()))
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid storage backends created")
	}
	return NewMultiStorageBackend(backends, f.log), nil
}

func (f *Factory) createS3Backend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	bucket := location.Host
	if bucket == "" {
		return nil, fmt.Errorf("%w: s3 URI needs a bucket host", interfaces.ErrInvalidLocationURI)
	}

	prefix := strings.TrimPrefix(location.Path, "/")
	region := location.GetParam("region")
	if region == "" {
		region = "us-east-1"
	}

	accessKey := location.GetParam("access_key")
	secretKey := location.GetParam("secret_key")
	if location.Auth != "" {
		// Credentials may also ride in the userinfo part.
		parts := strings.SplitN(location.Auth, ":", 2)
		accessKey = parts[0]
		if len(parts) == 2 {
			secretKey = parts[1]
		}
	}

	return NewS3Backend(bucket, prefix, region, location.GetParam("endpoint"), accessKey, secretKey, f.log)
}
