package upload

import (
	"context"
	"io"
	"notary/internal/models"
)

const pkg = "uploadHandler/"

type UploadCoordinator interface {
	Initiate(ctx context.Context, key string, contentType string) (string, error)
	UploadPart(ctx context.Context, key string, uploadID string, partNumber int32, r io.Reader) (string, error)
	Complete(ctx context.Context, key string, uploadID string, parts []models.CompletedPart) error
	Abort(ctx context.Context, key string, uploadID string) error
	Session(ctx context.Context, uploadID string) (*models.UploadSession, error)
}
