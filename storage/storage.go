// Package storage abstracts blob storage for user uploads behind a small
// provider interface with interchangeable implementations.
package storage

import (
	"context"
	"fmt"
	"io"

	"santodinheiro/config"
)

// UploadResult describes a stored blob.
type UploadResult struct {
	URL      string `json:"url"`
	Pathname string `json:"pathname"`
}

// Provider is the blob storage contract: upload a stream under a key, delete
// by the URL a previous upload returned, and identify yourself.
type Provider interface {
	Upload(ctx context.Context, key string, r io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, url string) error
	Name() string
}

// NewFromConfig builds the configured provider. Local disk is the default;
// the in-memory provider backs tests and ephemeral deployments.
func NewFromConfig(cfg *config.Config) (Provider, error) {
	switch cfg.StorageProvider {
	case "local", "":
		return NewLocalProvider(cfg.StorageDir, cfg.StorageBaseURL), nil
	case "memory":
		return NewMemoryProvider(cfg.StorageBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.StorageProvider)
	}
}
