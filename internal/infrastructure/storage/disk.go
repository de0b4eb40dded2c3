package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/petadopt/adoption-api/internal/core/domain"
	"github.com/petadopt/adoption-api/internal/core/ports"
)

// DiskStore writes uploaded images into a directory served as static files.
// References are bare file names.
type DiskStore struct {
	dir     string
	maxSize int64
}

// NewDiskStore creates dir if needed. maxSize <= 0 disables the size limit.
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, maxSize: maxSize}, nil
}

// Dir is the directory images are written to.
func (s *DiskStore) Dir() string { return s.dir }

// Save copies the upload under a random name keeping its extension.
func (s *DiskStore) Save(ctx context.Context, up ports.ImageUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("storage: open upload: %w", err)
	}
	defer src.Close()

	ref := uuid.NewString() + strings.ToLower(filepath.Ext(up.Filename))
	path := filepath.Join(s.dir, ref)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create image: %w", err)
	}

	var r io.Reader = src
	if s.maxSize > 0 {
		r = io.LimitReader(src, s.maxSize+1)
	}
	n, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxSize > 0 && n > s.maxSize {
		err = domain.Validationf("image %s exceeds the %d byte limit", up.Filename, s.maxSize)
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, domain.ErrValidation) {
			return "", err
		}
		return "", fmt.Errorf("storage: write image: %w", err)
	}
	return ref, nil
}

// Delete removes an image. Missing files are not an error.
func (s *DiskStore) Delete(_ context.Context, ref string) error {
	name := filepath.Base(ref)
	if name != ref || name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("storage: invalid image reference %q", ref)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete image: %w", err)
	}
	return nil
}
