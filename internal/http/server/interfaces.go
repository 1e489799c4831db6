package server

import (
	"context"
	"io"
	"net/http"
	"notary/internal/models"
	"time"
)

type AuthService interface {
	Register(ctx context.Context, login string, password string, token string) (string, error)
	Login(ctx context.Context, login string, password string) (string, error)
	UserByToken(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, c *models.Customer) (string, error)
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	CustomerByID(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context, limit int) ([]*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

type DocumentService interface {
	CreateDocument(ctx context.Context, doc *models.Document, parties []models.DesiredParty) (string, error)
	UpdateDocument(ctx context.Context, doc *models.Document, parties []models.DesiredParty) error
	DocumentByID(ctx context.Context, id string) (*models.DocumentDetails, error)
	ListDocuments(ctx context.Context, limit int) ([]*models.Document, error)
	AttachFile(ctx context.Context, docID string, fileName string, contentType string, content io.Reader) (*models.DocumentFile, error)
	RegisterUploadedFile(ctx context.Context, docID string, key string, fileName string, contentType string) (*models.DocumentFile, error)
	VerifyFileIntegrity(ctx context.Context, fileID string) (bool, error)
	SignFile(ctx context.Context, fileID string) (*models.DocumentFile, error)
	VerifyFileSignature(ctx context.Context, fileID string) (bool, error)
	FileDownloadURL(ctx context.Context, fileID string) (models.PresignedURL, error)
	DeleteFile(ctx context.Context, fileID string) error
}

type UploadCoordinator interface {
	Initiate(ctx context.Context, key string, contentType string) (string, error)
	UploadPart(ctx context.Context, key string, uploadID string, partNumber int32, r io.Reader) (string, error)
	Complete(ctx context.Context, key string, uploadID string, parts []models.CompletedPart) error
	Abort(ctx context.Context, key string, uploadID string) error
	Session(ctx context.Context, uploadID string) (*models.UploadSession, error)
}

type KeyProvider interface {
	PublicKey(ctx context.Context) (string, error)
}

type LocalBlobStore interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	VerifyPresigned(key string, expires string, signature string, now time.Time) error
}

type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

type RequestObserver interface {
	ObserveHTTPRequest(method, route string, code int, seconds float64)
}

// Services bundles what the router dispatches to. Blobs, Health, Observer and Metrics may be nil.
type Services struct {
	Auth      AuthService
	Customers CustomerService
	Documents DocumentService
	Uploads   UploadCoordinator
	Signing   KeyProvider
	Blobs     LocalBlobStore
	Health    ReadinessChecker
	Observer  RequestObserver
	Metrics   http.Handler
}
