//go:build !s3

package media

import (
	"context"
	"errors"

	"reelhub/internal/core/ports"
)

// ErrS3Unavailable is returned by binaries built without the s3 tag.
var ErrS3Unavailable = errors.New("S3 media storage requires building with -tags s3")

func NewS3Store(ctx context.Context, opts S3Options) (ports.MediaStore, error) {
	return nil, ErrS3Unavailable
}
