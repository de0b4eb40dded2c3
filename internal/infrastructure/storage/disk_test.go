package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petadopt/adoption-api/internal/core/domain"
	"github.com/petadopt/adoption-api/internal/core/ports"
)

func upload(name, body string) ports.ImageUpload {
	return ports.ImageUpload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestDiskStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(filepath.Join(dir, "pets"), 0)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	ref, err := store.Save(context.Background(), upload("Dog.PNG", "pixels"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Ext(ref) != ".png" {
		t.Fatalf("expected lower-cased extension, got %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), ref))
	if err != nil || string(data) != "pixels" {
		t.Fatalf("unexpected file content %q, %v", data, err)
	}

	if err := store.Delete(context.Background(), ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), ref)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
	if err := store.Delete(context.Background(), ref); err != nil {
		t.Fatalf("deleting a missing image must succeed, got %v", err)
	}
}

func TestDiskStore_UniqueNames(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir(), 0)

	a, _ := store.Save(context.Background(), upload("a.jpg", "1"))
	b, _ := store.Save(context.Background(), upload("a.jpg", "2"))
	if a == b {
		t.Fatalf("expected distinct references, got %q twice", a)
	}
}

func TestDiskStore_SizeLimit(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir(), 4)

	_, err := store.Save(context.Background(), upload("big.jpg", "too large"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	entries, _ := os.ReadDir(store.Dir())
	if len(entries) != 0 {
		t.Fatalf("oversized image must not be kept, found %d files", len(entries))
	}
}

func TestDiskStore_DeleteRejectsTraversal(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir(), 0)

	if err := store.Delete(context.Background(), "../etc/passwd"); err == nil {
		t.Fatal("expected error for path traversal")
	}
}
