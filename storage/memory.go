package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MemoryProvider keeps blobs in memory. Used in tests and ephemeral
// deployments where uploads do not need to survive a restart.
type MemoryProvider struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	baseURL string
}

// NewMemoryProvider creates an in-memory provider.
func NewMemoryProvider(baseURL string) *MemoryProvider {
	return &MemoryProvider{
		blobs:   make(map[string][]byte),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (p *MemoryProvider) Name() string { return "memory" }

func (p *MemoryProvider) Upload(ctx context.Context, key string, r io.Reader) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	p.mu.Lock()
	p.blobs[key] = data
	p.mu.Unlock()

	return &UploadResult{
		URL:      p.baseURL + "/" + key,
		Pathname: key,
	}, nil
}

func (p *MemoryProvider) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := strings.TrimPrefix(url, p.baseURL+"/")

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.blobs[key]; !ok {
		return fmt.Errorf("blob not found: %s", key)
	}
	delete(p.blobs, key)
	return nil
}

// Get returns a stored blob; test helper.
func (p *MemoryProvider) Get(key string) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.blobs[key]
	return data, ok
}
