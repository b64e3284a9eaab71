package ports

import (
	"context"
	"io"
)

// MediaStore keeps validated images and hands back a stable reference that is
// later served as a read-only static asset.
type MediaStore interface {
	Save(ctx context.Context, name string, data io.Reader) error
	Load(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}
