package documentservice

import (
	"context"
	"io"
	"notary/internal/models"
	"time"
)

type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DocumentByID(ctx context.Context, id string) (*models.Document, error)
	TransactionCodeTaken(ctx context.Context, code string, exceptID string) (bool, error)
	ListDocuments(ctx context.Context, limit int) ([]*models.Document, error)
}

type FileRepository interface {
	CreateFile(ctx context.Context, f *models.DocumentFile) error
	FileByID(ctx context.Context, id string) (*models.DocumentFile, error)
	ListByDocument(ctx context.Context, documentID string) ([]models.DocumentFile, error)
	SaveSignature(ctx context.Context, id string, signature []byte, signedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type PartyLister interface {
	ListByDocument(ctx context.Context, documentID string) ([]models.PartyLink, error)
}

type PartyReconciler interface {
	Reconcile(ctx context.Context, documentID string, desired []models.DesiredParty, defaultNotaryDate time.Time) (models.PartyPlan, error)
}

type BlobCoordinator interface {
	Bucket() string
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Presign(ctx context.Context, key string, ttl time.Duration) (models.PresignedURL, error)
	UploadStream(ctx context.Context, key string, contentType string, r io.Reader, partSize int64, concurrency int) (string, int64, error)
	Abort(ctx context.Context, key string, uploadID string) error
}

type Integrity interface {
	Sign(ctx context.Context, digestHex string) ([]byte, error)
	VerifySignature(ctx context.Context, digestHex string, signature []byte) (bool, error)
	MatchDigests(storedHex string, computedHex string) bool
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Cache interface {
	Document(ctx context.Context, id string) (*models.Document, error)
	SetDocument(ctx context.Context, doc *models.Document) error
	Invalidate(ctx context.Context, ids ...string) error
}
