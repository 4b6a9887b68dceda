package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider stores blobs on the local filesystem under a base directory.
type LocalProvider struct {
	baseDir string
	baseURL string
}

// NewLocalProvider creates a filesystem-backed provider.
func NewLocalProvider(baseDir, baseURL string) *LocalProvider {
	return &LocalProvider{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (p *LocalProvider) Name() string { return "local" }

// Upload writes the stream to baseDir/key. Keys may contain slashes;
// anything escaping the base directory is rejected.
func (p *LocalProvider) Upload(ctx context.Context, key string, r io.Reader) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned := filepath.Clean(key)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return nil, fmt.Errorf("invalid storage key: %s", key)
	}

	path := filepath.Join(p.baseDir, cleaned)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	return &UploadResult{
		URL:      p.baseURL + "/" + filepath.ToSlash(cleaned),
		Pathname: cleaned,
	}, nil
}

// Delete removes the blob a previous Upload returned.
func (p *LocalProvider) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pathname := strings.TrimPrefix(url, p.baseURL+"/")
	cleaned := filepath.Clean(pathname)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return fmt.Errorf("invalid storage url: %s", url)
	}

	if err := os.Remove(filepath.Join(p.baseDir, cleaned)); err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}
