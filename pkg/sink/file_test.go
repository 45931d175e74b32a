package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSink_StoreAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	s := NewFileSink(dir, "/")

	url, err := s.Store(context.Background(), "shopify-tweakwise-feed.xml", []byte("<tweakwise/>"), "application/xml")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if url != "/shopify-tweakwise-feed.xml" {
		t.Errorf("url = %q, want /shopify-tweakwise-feed.xml", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "shopify-tweakwise-feed.xml"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "<tweakwise/>" {
		t.Errorf("file content = %q", data)
	}

	entry, err := s.Load(context.Background(), "shopify-tweakwise-feed.xml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if entry.ETag != ETag(data) {
		t.Errorf("ETag = %q", entry.ETag)
	}
	if entry.ContentType != "application/xml; charset=utf-8" {
		t.Errorf("ContentType = %q", entry.ContentType)
	}
}

func TestFileSink_ReplaceLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir, "https://cdn.example.com/feeds/")

	for _, body := range []string{"first", "second"} {
		url, err := s.Store(context.Background(), "feed.xml", []byte(body), "")
		if err != nil {
			t.Fatalf("Store() error = %v", err)
		}
		if url != "https://cdn.example.com/feeds/feed.xml" {
			t.Errorf("url = %q", url)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir entries = %d, want 1", len(entries))
	}

	data, _ := os.ReadFile(filepath.Join(dir, "feed.xml"))
	if string(data) != "second" {
		t.Errorf("file content = %q, want second", data)
	}
}

func TestFileSink_InvalidName(t *testing.T) {
	s := NewFileSink(t.TempDir(), "")

	if _, err := s.Store(context.Background(), "../escape.xml", []byte("x"), ""); err == nil {
		t.Error("Store() should reject names leaving the directory")
	}
	if _, err := s.Load(context.Background(), "../escape.xml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestFileSink_LoadMissing(t *testing.T) {
	s := NewFileSink(t.TempDir(), "")

	if _, err := s.Load(context.Background(), "missing.xml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}
