// Package media stores uploaded show and episode images.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/pkg/optimize"
)

var (
	ErrInvalidName = errors.New("invalid media name")
	ErrNotFound    = fmt.Errorf("media %w", domain.ErrNotFound)
)

// FileStore keeps media as flat files under a single directory.
type FileStore struct {
	basePath string
}

var _ ports.MediaStore = (*FileStore)(nil)

func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// CheckName rejects anything that is not a plain file name.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name ||
		strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save writes to a temporary file first so readers never see a partial image.
func (s *FileStore) Save(ctx context.Context, name string, data io.Reader) error {
	if err := CheckName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create media file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := optimize.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write media data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write media data: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("failed to publish media file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}
	return file, nil
}

// Delete is a no-op for files that do not exist.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.basePath, name)
}
