package documentservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"notary/internal/metrics"
	"notary/internal/models"
	integrityservice "notary/internal/services/integrity"
	"path"
	"slices"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

const pkg = "documentService/"

type Options struct {
	AllowedContentTypes []string
	PresignTTL          time.Duration
	// PartSize above which attachments go through a multipart upload. Zero disables it.
	PartSize          int64
	UploadConcurrency int
}

// DocumentService coordinates a document with its parties and files.
type DocumentService struct {
	log        *slog.Logger
	tx         TxRunner
	docRepo    DocumentRepository
	fileRepo   FileRepository
	parties    PartyLister
	reconciler PartyReconciler
	blobs      BlobCoordinator
	integrity  Integrity
	cache      Cache
	metrics    *metrics.Metrics
	opts       Options
	now        func() time.Time
}

func New(
	log *slog.Logger,
	tx TxRunner,
	docRepo DocumentRepository,
	fileRepo FileRepository,
	parties PartyLister,
	reconciler PartyReconciler,
	blobs BlobCoordinator,
	integrity Integrity,
	cache Cache,
	m *metrics.Metrics,
	opts Options,
) *DocumentService {
	return &DocumentService{
		log:        log,
		tx:         tx,
		docRepo:    docRepo,
		fileRepo:   fileRepo,
		parties:    parties,
		reconciler: reconciler,
		blobs:      blobs,
		integrity:  integrity,
		cache:      cache,
		metrics:    m,
		opts:       opts,
		now:        time.Now,
	}
}

// CreateDocument stores doc and links its parties in one transaction.
func (ds *DocumentService) CreateDocument(ctx context.Context, doc *models.Document, parties []models.DesiredParty) (string, error) {
	op := pkg + "CreateDocument"

	log := ds.log.With(slog.String("op", op))

	log.Debug("attempting to create document", slog.String("transaction_code", doc.TransactionCode), slog.Int("parties", len(parties)))

	if strings.TrimSpace(doc.TransactionCode) == "" {
		return "", fmt.Errorf("%s: transaction code is required: %w", op, models.ErrInvalidParams)
	}

	now := ds.now()
	doc.ID = uuid.NewV4().String()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.CreationDate.IsZero() {
		doc.CreationDate = now
	}

	err := ds.tx.RunInTx(ctx, func(ctx context.Context) error {
		taken, err := ds.docRepo.TransactionCodeTaken(ctx, doc.TransactionCode, doc.ID)
		if err != nil {
			return err
		}
		if taken {
			return models.ErrDuplicateTransactionCode
		}

		if err := ds.docRepo.CreateDocument(ctx, doc); err != nil {
			return err
		}

		_, err = ds.reconciler.Reconcile(ctx, doc.ID, parties, doc.CreationDate)
		return err
	})
	if err != nil {
		return "", ds.fail(log, op, "failed to create document", err)
	}

	if ds.metrics != nil {
		ds.metrics.IncrementDocumentsCreated()
	}

	log.Info("document created", slog.String("doc_id", doc.ID))

	return doc.ID, nil
}

// UpdateDocument replaces the scalar fields of doc and reconciles its parties.
// Both commit together or not at all.
func (ds *DocumentService) UpdateDocument(ctx context.Context, doc *models.Document, parties []models.DesiredParty) error {
	op := pkg + "UpdateDocument"

	log := ds.log.With(slog.String("op", op), slog.String("doc_id", doc.ID))

	log.Debug("attempting to update document", slog.Int("parties", len(parties)))

	if strings.TrimSpace(doc.TransactionCode) == "" {
		return fmt.Errorf("%s: transaction code is required: %w", op, models.ErrInvalidParams)
	}

	err := ds.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := ds.docRepo.DocumentByID(ctx, doc.ID)
		if err != nil {
			return err
		}

		taken, err := ds.docRepo.TransactionCodeTaken(ctx, doc.TransactionCode, doc.ID)
		if err != nil {
			return err
		}
		if taken {
			return models.ErrDuplicateTransactionCode
		}

		doc.CreatedAt = existing.CreatedAt
		doc.UpdatedAt = ds.now()
		if doc.CreationDate.IsZero() {
			doc.CreationDate = existing.CreationDate
		}

		if err := ds.docRepo.UpdateDocument(ctx, doc); err != nil {
			return err
		}

		_, err = ds.reconciler.Reconcile(ctx, doc.ID, parties, doc.CreationDate)
		return err
	})
	if err != nil {
		return ds.fail(log, op, "failed to update document", err)
	}

	if err := ds.cache.Invalidate(ctx, doc.ID); err != nil {
		log.Warn("failed to invalidate document cache", slog.String("error", err.Error()))
	}

	if ds.metrics != nil {
		ds.metrics.IncrementDocumentsUpdated()
	}

	log.Info("document updated")

	return nil
}

func (ds *DocumentService) DocumentByID(ctx context.Context, id string) (*models.DocumentDetails, error) {
	op := pkg + "DocumentByID"

	log := ds.log.With(slog.String("op", op), slog.String("doc_id", id))

	doc, err := ds.documentMetaByID(ctx, log, id)
	if err != nil {
		return nil, ds.fail(log, op, "failed to get document", err)
	}

	parties, err := ds.parties.ListByDocument(ctx, id)
	if err != nil {
		return nil, ds.fail(log, op, "failed to list parties", err)
	}

	files, err := ds.fileRepo.ListByDocument(ctx, id)
	if err != nil {
		return nil, ds.fail(log, op, "failed to list files", err)
	}

	return &models.DocumentDetails{Document: doc, Parties: parties, Files: files}, nil
}

func (ds *DocumentService) ListDocuments(ctx context.Context, limit int) ([]*models.Document, error) {
	op := pkg + "ListDocuments"

	log := ds.log.With(slog.String("op", op))

	docs, err := ds.docRepo.ListDocuments(ctx, limit)
	if err != nil {
		return nil, ds.fail(log, op, "failed to list documents", err)
	}

	log.Debug("documents listed", slog.Int("count", len(docs)))

	return docs, nil
}

// AttachFile uploads content for a document and records its digest. Signing is a separate step.
func (ds *DocumentService) AttachFile(ctx context.Context, docID string, fileName string, contentType string, content io.Reader) (*models.DocumentFile, error) {
	op := pkg + "AttachFile"

	log := ds.log.With(slog.String("op", op), slog.String("doc_id", docID))

	log.Debug("attempting to attach file", slog.String("file_name", fileName), slog.String("content_type", contentType))

	name, err := ds.checkUpload(fileName, contentType)
	if err != nil {
		log.Warn("rejected file", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := ds.docRepo.DocumentByID(ctx, docID); err != nil {
		return nil, ds.fail(log, op, "failed to get document", err)
	}

	fileID := uuid.NewV4().String()
	key := blobKey(docID, fileID, name)

	digester := integrityservice.NewDigestWriter()

	if err := ds.upload(ctx, log, key, io.TeeReader(content, digester), contentType); err != nil {
		return nil, ds.fail(log, op, "failed to upload file", err)
	}

	file, err := ds.saveFile(ctx, log, fileID, docID, key, name, contentType, digester.Sum(), digester.Size())
	if err != nil {
		return nil, ds.fail(log, op, "failed to save file record", err)
	}

	log.Info("file attached", slog.String("file_id", file.ID), slog.Int64("size", file.Size))

	return file, nil
}

// RegisterUploadedFile records a blob that was assembled through a multipart upload.
// The blob is read once to compute its digest and size.
func (ds *DocumentService) RegisterUploadedFile(ctx context.Context, docID string, key string, fileName string, contentType string) (*models.DocumentFile, error) {
	op := pkg + "RegisterUploadedFile"

	log := ds.log.With(slog.String("op", op), slog.String("doc_id", docID), slog.String("key", key))

	name, err := ds.checkUpload(fileName, contentType)
	if err != nil {
		log.Warn("rejected file", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := ds.docRepo.DocumentByID(ctx, docID); err != nil {
		return nil, ds.fail(log, op, "failed to get document", err)
	}

	digest, size, err := ds.digestBlob(ctx, key)
	if err != nil {
		return nil, ds.fail(log, op, "failed to read uploaded blob", err)
	}

	file, err := ds.saveFile(ctx, log, uuid.NewV4().String(), docID, key, name, contentType, digest, size)
	if err != nil {
		return nil, ds.fail(log, op, "failed to save file record", err)
	}

	log.Info("uploaded file registered", slog.String("file_id", file.ID))

	return file, nil
}

// VerifyFileIntegrity re-reads the stored bytes and compares their digest with the recorded one.
func (ds *DocumentService) VerifyFileIntegrity(ctx context.Context, fileID string) (bool, error) {
	op := pkg + "VerifyFileIntegrity"

	log := ds.log.With(slog.String("op", op), slog.String("file_id", fileID))

	file, err := ds.fileRepo.FileByID(ctx, fileID)
	if err != nil {
		return false, ds.fail(log, op, "failed to get file", err)
	}

	digest, _, err := ds.digestBlob(ctx, file.BlobKey)
	if err != nil {
		return false, ds.fail(log, op, "failed to read blob", err)
	}

	ok := ds.integrity.MatchDigests(file.Digest, digest)
	if !ok {
		log.Warn("digest mismatch", slog.String("stored", file.Digest), slog.String("computed", digest))
	}

	return ok, nil
}

// SignFile signs the recorded digest after checking the stored bytes still match it.
func (ds *DocumentService) SignFile(ctx context.Context, fileID string) (*models.DocumentFile, error) {
	op := pkg + "SignFile"

	log := ds.log.With(slog.String("op", op), slog.String("file_id", fileID))

	ok, err := ds.VerifyFileIntegrity(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: stored content changed: %w", op, models.ErrIntegrityMismatch)
	}

	file, err := ds.fileRepo.FileByID(ctx, fileID)
	if err != nil {
		return nil, ds.fail(log, op, "failed to get file", err)
	}

	sig, err := ds.integrity.Sign(ctx, file.Digest)
	if err != nil {
		return nil, ds.fail(log, op, "failed to sign digest", err)
	}

	signedAt := ds.now()
	if err := ds.fileRepo.SaveSignature(ctx, fileID, sig, signedAt); err != nil {
		return nil, ds.fail(log, op, "failed to save signature", err)
	}

	file.Signature = sig
	file.SignedAt = &signedAt
	file.UpdatedAt = signedAt

	log.Info("file signed")

	return file, nil
}

func (ds *DocumentService) VerifyFileSignature(ctx context.Context, fileID string) (bool, error) {
	op := pkg + "VerifyFileSignature"

	log := ds.log.With(slog.String("op", op), slog.String("file_id", fileID))

	file, err := ds.fileRepo.FileByID(ctx, fileID)
	if err != nil {
		return false, ds.fail(log, op, "failed to get file", err)
	}

	if !file.IsSigned() {
		return false, fmt.Errorf("%s: %w", op, models.ErrNotSigned)
	}

	ok, err := ds.integrity.VerifySignature(ctx, file.Digest, file.Signature)
	if err != nil {
		return false, ds.fail(log, op, "failed to verify signature", err)
	}

	return ok, nil
}

func (ds *DocumentService) FileDownloadURL(ctx context.Context, fileID string) (models.PresignedURL, error) {
	op := pkg + "FileDownloadURL"

	log := ds.log.With(slog.String("op", op), slog.String("file_id", fileID))

	file, err := ds.fileRepo.FileByID(ctx, fileID)
	if err != nil {
		return models.PresignedURL{}, ds.fail(log, op, "failed to get file", err)
	}

	url, err := ds.blobs.Presign(ctx, file.BlobKey, ds.opts.PresignTTL)
	if err != nil {
		return models.PresignedURL{}, ds.fail(log, op, "failed to presign", err)
	}

	return url, nil
}

// DeleteFile removes the record, then the blob. A blob left behind is only logged.
func (ds *DocumentService) DeleteFile(ctx context.Context, fileID string) error {
	op := pkg + "DeleteFile"

	log := ds.log.With(slog.String("op", op), slog.String("file_id", fileID))

	file, err := ds.fileRepo.FileByID(ctx, fileID)
	if err != nil {
		return ds.fail(log, op, "failed to get file", err)
	}

	if err := ds.fileRepo.Delete(ctx, fileID); err != nil {
		return ds.fail(log, op, "failed to delete file record", err)
	}

	if err := ds.blobs.Delete(ctx, file.BlobKey); err != nil {
		log.Error("failed to delete blob", slog.String("key", file.BlobKey), slog.String("error", err.Error()))
	}

	log.Info("file deleted")

	return nil
}

func (ds *DocumentService) documentMetaByID(ctx context.Context, log *slog.Logger, id string) (*models.Document, error) {
	doc, err := ds.cache.Document(ctx, id)
	if err != nil {
		log.Warn("failed to read document cache", slog.String("error", err.Error()))
	}
	if doc != nil {
		return doc, nil
	}

	doc, err = ds.docRepo.DocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ds.cache.SetDocument(ctx, doc); err != nil {
		log.Warn("failed to set document cache", slog.String("error", err.Error()))
	}

	return doc, nil
}

func (ds *DocumentService) checkUpload(fileName string, contentType string) (string, error) {
	if !slices.Contains(ds.opts.AllowedContentTypes, contentType) {
		return "", fmt.Errorf("%q: %w", contentType, models.ErrUnsupportedContentType)
	}

	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("file name is required: %w", models.ErrInvalidParams)
	}

	return name, nil
}

// upload sends bodies that fit in one part with a single Put and streams larger ones as multipart.
func (ds *DocumentService) upload(ctx context.Context, log *slog.Logger, key string, r io.Reader, contentType string) error {
	if ds.opts.PartSize <= 0 {
		_, err := ds.blobs.Put(ctx, key, r, contentType)
		return err
	}

	head := make([]byte, ds.opts.PartSize)
	n, err := io.ReadFull(r, head)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		_, err = ds.blobs.Put(ctx, key, bytes.NewReader(head[:n]), contentType)
		return err
	}
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}

	uploadID, size, err := ds.blobs.UploadStream(ctx, key, contentType, io.MultiReader(bytes.NewReader(head), r), ds.opts.PartSize, ds.opts.UploadConcurrency)
	if err != nil {
		// cancelled streams leave the session open
		if uploadID != "" && ctx.Err() != nil {
			if abortErr := ds.blobs.Abort(context.WithoutCancel(ctx), key, uploadID); abortErr != nil {
				log.Error("failed to abort upload", slog.String("upload_id", uploadID), slog.String("error", abortErr.Error()))
			}
		}
		return err
	}

	log.Debug("file streamed", slog.String("upload_id", uploadID), slog.Int64("size", size))

	return nil
}

func (ds *DocumentService) digestBlob(ctx context.Context, key string) (string, int64, error) {
	rc, err := ds.blobs.Get(ctx, key)
	if err != nil {
		return "", 0, err
	}
	defer rc.Close()

	digest, size, err := integrityservice.DigestReader(rc)
	if err != nil {
		return "", 0, fmt.Errorf("read blob: %w", err)
	}

	return digest, size, nil
}

func (ds *DocumentService) saveFile(ctx context.Context, log *slog.Logger, fileID, docID, key, name, contentType, digest string, size int64) (*models.DocumentFile, error) {
	now := ds.now()

	file := &models.DocumentFile{
		ID:          fileID,
		DocumentID:  docID,
		FileName:    name,
		Size:        size,
		ContentType: contentType,
		BlobKey:     key,
		Bucket:      ds.blobs.Bucket(),
		Digest:      digest,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := ds.fileRepo.CreateFile(ctx, file); err != nil {
		if delErr := ds.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			log.Error("failed to remove orphaned blob", slog.String("key", key), slog.String("error", delErr.Error()))
		}
		return nil, err
	}

	return file, nil
}

// fail logs err and returns it tagged for the caller. Errors without a taxonomy kind become ErrInternal.
func (ds *DocumentService) fail(log *slog.Logger, op string, msg string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Warn(msg, slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	switch models.KindOf(err) {
	case models.KindInternal:
		log.Error(msg, slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	case models.KindUpstreamUnavailable:
		log.Error(msg, slog.String("error", err.Error()))
	default:
		log.Warn(msg, slog.String("error", err.Error()))
	}

	return fmt.Errorf("%s: %w", op, err)
}

func blobKey(docID string, fileID string, name string) string {
	return fmt.Sprintf("documents/%s/%s/%s", docID, fileID, name)
}
