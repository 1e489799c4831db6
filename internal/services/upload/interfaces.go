package uploadservice

import (
	"context"
	"io"
	"notary/internal/models"
	"time"
)

type BlobStore interface {
	Bucket() string
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)

	CreateMultipartUpload(ctx context.Context, key string, contentType string) (string, error)
	UploadPart(ctx context.Context, key string, uploadID string, partNumber int32, r io.Reader) (string, error)
	CompleteMultipartUpload(ctx context.Context, key string, uploadID string, parts []models.CompletedPart) error
	ListParts(ctx context.Context, key string, uploadID string) ([]models.CompletedPart, error)
	AbortMultipartUpload(ctx context.Context, key string, uploadID string) error
}

// SessionStore persists multipart session records. Session returns models.ErrUploadNotFound for unknown ids.
type SessionStore interface {
	SaveSession(ctx context.Context, s *models.UploadSession) error
	Session(ctx context.Context, uploadID string) (*models.UploadSession, error)
}
