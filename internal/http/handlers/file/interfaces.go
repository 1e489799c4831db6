package file

import (
	"context"
	"notary/internal/models"
)

const pkg = "fileHandler/"

type FileService interface {
	VerifyFileIntegrity(ctx context.Context, fileID string) (bool, error)
	SignFile(ctx context.Context, fileID string) (*models.DocumentFile, error)
	VerifyFileSignature(ctx context.Context, fileID string) (bool, error)
	FileDownloadURL(ctx context.Context, fileID string) (models.PresignedURL, error)
	DeleteFile(ctx context.Context, fileID string) error
}
