package blob

import (
	"context"
	"io"
	"time"
)

const pkg = "blobHandler/"

// LocalStore serves objects of the filesystem blob store behind presigned links.
type LocalStore interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	VerifyPresigned(key string, expires string, signature string, now time.Time) error
}
