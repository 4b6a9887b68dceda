package storage

import (
	"context"
	"strings"
	"testing"
)

func TestMemoryProviderRoundTrip(t *testing.T) {
	p := NewMemoryProvider("http://localhost:8080/uploads/")

	res, err := p.Upload(context.Background(), "receipts/jan.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if res.URL != "http://localhost:8080/uploads/receipts/jan.pdf" {
		t.Errorf("Unexpected URL: %s", res.URL)
	}
	if res.Pathname != "receipts/jan.pdf" {
		t.Errorf("Unexpected pathname: %s", res.Pathname)
	}

	data, ok := p.Get("receipts/jan.pdf")
	if !ok || string(data) != "pdf-bytes" {
		t.Errorf("Expected stored blob, got %q (ok=%v)", data, ok)
	}

	if err := p.Delete(context.Background(), res.URL); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, ok := p.Get("receipts/jan.pdf"); ok {
		t.Error("Expected blob to be gone after delete")
	}

	if err := p.Delete(context.Background(), res.URL); err == nil {
		t.Error("Expected error deleting missing blob")
	}
}

func TestLocalProviderRejectsEscapingKeys(t *testing.T) {
	p := NewLocalProvider(t.TempDir(), "http://localhost:8080/uploads")

	if _, err := p.Upload(context.Background(), "../outside.txt", strings.NewReader("x")); err == nil {
		t.Error("Expected error for key escaping the base directory")
	}
	if _, err := p.Upload(context.Background(), "/abs.txt", strings.NewReader("x")); err == nil {
		t.Error("Expected error for absolute key")
	}
}

func TestLocalProviderRoundTrip(t *testing.T) {
	p := NewLocalProvider(t.TempDir(), "http://localhost:8080/uploads")

	res, err := p.Upload(context.Background(), "docs/note.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if err := p.Delete(context.Background(), res.URL); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}
