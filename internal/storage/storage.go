// Package storage archives uploaded iris photographs so a reading can be
// revisited later. The backend is selected by configuration; "none" disables
// archiving entirely.
package storage

import (
	"context"
	"fmt"

	"go-iris-analyzer/internal/config"
)

// ImageStore persists raw image uploads under a caller-chosen name.
type ImageStore interface {
	// Save persists the image bytes and returns a backend-specific locator.
	Save(ctx context.Context, name string, data []byte) (string, error)

	// Load retrieves previously saved image bytes by name.
	Load(ctx context.Context, name string) ([]byte, error)
}

// NewImageStore builds the store selected by cfg.StorageBackend. A "none"
// backend returns (nil, nil); callers treat a nil store as archiving
// disabled.
func NewImageStore(cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageBackend {
	case "none":
		return nil, nil
	case "file":
		return NewFileStore(cfg.StorageDir)
	case "azure":
		return NewAzureStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.StorageBackend)
	}
}
