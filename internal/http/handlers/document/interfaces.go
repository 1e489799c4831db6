package document

import (
	"context"
	"io"
	"notary/internal/models"
)

const pkg = "documentHandler/"

type DocumentService interface {
	CreateDocument(ctx context.Context, doc *models.Document, parties []models.DesiredParty) (string, error)
	UpdateDocument(ctx context.Context, doc *models.Document, parties []models.DesiredParty) error
	DocumentByID(ctx context.Context, id string) (*models.DocumentDetails, error)
	ListDocuments(ctx context.Context, limit int) ([]*models.Document, error)
}

type FileAttacher interface {
	AttachFile(ctx context.Context, docID string, fileName string, contentType string, content io.Reader) (*models.DocumentFile, error)
	RegisterUploadedFile(ctx context.Context, docID string, key string, fileName string, contentType string) (*models.DocumentFile, error)
}
