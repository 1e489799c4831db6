package uploadservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"notary/internal/metrics"
	"notary/internal/models"
	"strings"
	"time"
)

const pkg = "uploadService/"

// Coordinator fronts the blob store: single-shot object calls plus the multipart
// session state machine NotStarted -> InProgress -> Completed | Aborted.
type Coordinator struct {
	log         *slog.Logger
	store       BlobStore
	sessions    SessionStore
	metrics     *metrics.Metrics
	now         func() time.Time
	minPartSize int64
}

func New(log *slog.Logger, store BlobStore, sessions SessionStore, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		log:         log,
		store:       store,
		sessions:    sessions,
		metrics:     m,
		now:         time.Now,
		minPartSize: MinPartSize,
	}
}

func (c *Coordinator) Bucket() string {
	return c.store.Bucket()
}

// Put uploads r under key and returns key unchanged.
func (c *Coordinator) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	op := pkg + "Put"

	log := c.log.With(slog.String("op", op), slog.String("key", key))

	if key == "" {
		return "", fmt.Errorf("%s: empty key: %w", op, models.ErrInvalidParams)
	}

	counter := &countingReader{r: r}

	err := c.store.Put(ctx, key, counter, contentType)
	c.observe("put", err)
	if err != nil {
		return "", c.storeError(ctx, log, op, err)
	}

	if c.metrics != nil {
		c.metrics.AddUploadedBytes(counter.n)
	}

	log.Debug("object stored", slog.Int64("size", counter.n))

	return key, nil
}

func (c *Coordinator) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	op := pkg + "Get"

	log := c.log.With(slog.String("op", op), slog.String("key", key))

	rc, err := c.store.Get(ctx, key)
	c.observe("get", err)
	if err != nil {
		return nil, c.storeError(ctx, log, op, err)
	}

	return rc, nil
}

func (c *Coordinator) Exists(ctx context.Context, key string) (bool, error) {
	op := pkg + "Exists"

	log := c.log.With(slog.String("op", op), slog.String("key", key))

	ok, err := c.store.Exists(ctx, key)
	c.observe("exists", err)
	if err != nil {
		return false, c.storeError(ctx, log, op, err)
	}

	return ok, nil
}

// Delete is idempotent: an absent key is not an error.
func (c *Coordinator) Delete(ctx context.Context, key string) error {
	op := pkg + "Delete"

	log := c.log.With(slog.String("op", op), slog.String("key", key))

	err := c.store.Delete(ctx, key)
	if errors.Is(err, models.ErrObjectNotFound) {
		err = nil
	}
	c.observe("delete", err)
	if err != nil {
		return c.storeError(ctx, log, op, err)
	}

	return nil
}

func (c *Coordinator) Presign(ctx context.Context, key string, ttl time.Duration) (models.PresignedURL, error) {
	op := pkg + "Presign"

	log := c.log.With(slog.String("op", op), slog.String("key", key))

	if ttl <= 0 {
		return models.PresignedURL{}, fmt.Errorf("%s: ttl must be positive: %w", op, models.ErrInvalidParams)
	}

	issuedAt := c.now()

	url, err := c.store.Presign(ctx, key, ttl)
	c.observe("presign", err)
	if err != nil {
		return models.PresignedURL{}, c.storeError(ctx, log, op, err)
	}

	return models.PresignedURL{URL: url, ExpiresAt: issuedAt.Add(ttl)}, nil
}

// Initiate opens a multipart session for key and returns its upload id.
func (c *Coordinator) Initiate(ctx context.Context, key string, contentType string) (string, error) {
	op := pkg + "Initiate"

	log := c.log.With(slog.String("op", op), slog.String("key", key))

	if key == "" {
		return "", fmt.Errorf("%s: empty key: %w", op, models.ErrInvalidParams)
	}

	uploadID, err := c.store.CreateMultipartUpload(ctx, key, contentType)
	c.observe("initiate", err)
	if err != nil {
		return "", c.storeError(ctx, log, op, err)
	}

	now := c.now()
	session := &models.UploadSession{
		UploadID:    uploadID,
		Key:         key,
		ContentType: contentType,
		State:       models.UploadInProgress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.sessions.SaveSession(ctx, session); err != nil {
		log.Error("failed to save upload session", slog.String("error", err.Error()))
		if abortErr := c.store.AbortMultipartUpload(context.WithoutCancel(ctx), key, uploadID); abortErr != nil {
			log.Error("failed to release orphaned upload", slog.String("upload_id", uploadID), slog.String("error", abortErr.Error()))
		}
		return "", fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Info("multipart upload started", slog.String("upload_id", uploadID))

	return uploadID, nil
}

// UploadPart stores one part. Retrying a part number replaces its content.
func (c *Coordinator) UploadPart(ctx context.Context, key string, uploadID string, partNumber int32, r io.Reader) (string, error) {
	op := pkg + "UploadPart"

	log := c.log.With(slog.String("op", op), slog.String("key", key), slog.String("upload_id", uploadID))

	if partNumber <= 0 {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidPartNumber)
	}

	if _, err := c.activeSession(ctx, key, uploadID); err != nil {
		log.Warn("rejected part", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	counter := &countingReader{r: r}

	etag, err := c.store.UploadPart(ctx, key, uploadID, partNumber, counter)
	c.observe("upload_part", err)
	if err != nil {
		return "", c.storeError(ctx, log, op, err)
	}

	if c.metrics != nil {
		c.metrics.AddUploadedBytes(counter.n)
	}

	log.Debug("part stored", slog.Int("part", int(partNumber)), slog.Int64("size", counter.n))

	return etag, nil
}

// Complete assembles the parts in the given order, which must be ascending by part number
// and name every uploaded part exactly once. On failure the session stays InProgress so the
// caller can retry or abort.
func (c *Coordinator) Complete(ctx context.Context, key string, uploadID string, parts []models.CompletedPart) error {
	op := pkg + "Complete"

	log := c.log.With(slog.String("op", op), slog.String("key", key), slog.String("upload_id", uploadID))

	session, err := c.activeSession(ctx, key, uploadID)
	if err != nil {
		log.Warn("rejected complete", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := validateParts(parts); err != nil {
		log.Warn("rejected part list", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	uploaded, err := c.store.ListParts(ctx, key, uploadID)
	if err != nil {
		return c.storeError(ctx, log, op, err)
	}

	if err := matchUploaded(parts, uploaded); err != nil {
		log.Warn("part list does not match uploaded parts", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	err = c.store.CompleteMultipartUpload(ctx, key, uploadID, parts)
	c.observe("complete", err)
	if err != nil {
		return c.storeError(ctx, log, op, err)
	}

	session.State = models.UploadCompleted
	session.UpdatedAt = c.now()

	// The object is committed at this point, so a failed state write is only logged.
	if err := c.sessions.SaveSession(context.WithoutCancel(ctx), session); err != nil {
		log.Error("failed to mark upload completed", slog.String("error", err.Error()))
	}

	log.Info("multipart upload completed", slog.Int("parts", len(parts)))

	return nil
}

// Abort releases all uploaded parts and finalizes the session.
func (c *Coordinator) Abort(ctx context.Context, key string, uploadID string) error {
	op := pkg + "Abort"

	log := c.log.With(slog.String("op", op), slog.String("key", key), slog.String("upload_id", uploadID))

	session, err := c.activeSession(ctx, key, uploadID)
	if err != nil {
		log.Warn("rejected abort", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	err = c.store.AbortMultipartUpload(ctx, key, uploadID)
	if errors.Is(err, models.ErrUploadNotFound) {
		// already gone on the store side
		err = nil
	}
	c.observe("abort", err)
	if err != nil {
		return c.storeError(ctx, log, op, err)
	}

	session.State = models.UploadAborted
	session.UpdatedAt = c.now()

	if err := c.sessions.SaveSession(context.WithoutCancel(ctx), session); err != nil {
		log.Error("failed to mark upload aborted", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Info("multipart upload aborted")

	return nil
}

// Session returns the registry record for uploadID.
func (c *Coordinator) Session(ctx context.Context, uploadID string) (*models.UploadSession, error) {
	op := pkg + "Session"

	s, err := c.sessions.Session(ctx, uploadID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (c *Coordinator) activeSession(ctx context.Context, key string, uploadID string) (*models.UploadSession, error) {
	s, err := c.sessions.Session(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	if s.Key != key {
		return nil, models.ErrUploadNotFound
	}

	if s.State.IsTerminal() {
		return nil, models.ErrUploadFinalized
	}

	return s, nil
}

func validateParts(parts []models.CompletedPart) error {
	if len(parts) == 0 {
		return fmt.Errorf("no parts: %w", models.ErrIncompleteUpload)
	}

	for i, p := range parts {
		if p.PartNumber <= 0 || p.ETag == "" {
			return fmt.Errorf("part %d: %w", p.PartNumber, models.ErrIncompleteUpload)
		}
		if i > 0 && p.PartNumber <= parts[i-1].PartNumber {
			return fmt.Errorf("part %d out of order: %w", p.PartNumber, models.ErrIncompleteUpload)
		}
	}

	return nil
}

// matchUploaded requires parts to name exactly the uploaded part numbers with their current ETags.
func matchUploaded(parts []models.CompletedPart, uploaded []models.CompletedPart) error {
	stored := make(map[int32]string, len(uploaded))
	for _, p := range uploaded {
		stored[p.PartNumber] = normalizeETag(p.ETag)
	}

	for _, p := range parts {
		etag, ok := stored[p.PartNumber]
		if !ok {
			return fmt.Errorf("part %d was never uploaded: %w", p.PartNumber, models.ErrIncompleteUpload)
		}
		if etag != normalizeETag(p.ETag) {
			return fmt.Errorf("part %d etag mismatch: %w", p.PartNumber, models.ErrIncompleteUpload)
		}
		delete(stored, p.PartNumber)
	}

	if len(stored) > 0 {
		return fmt.Errorf("%d uploaded parts not listed: %w", len(stored), models.ErrIncompleteUpload)
	}

	return nil
}

func normalizeETag(etag string) string {
	return strings.ToLower(strings.Trim(etag, `"`))
}

// storeError keeps caller-facing kinds from the store and turns everything else into
// ErrBlobStoreUnavailable. The raw error is logged only.
func (c *Coordinator) storeError(ctx context.Context, log *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrValidationFailed):
		log.Warn("blob store rejected request", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	case ctx.Err() != nil:
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}

	log.Error("blob store call failed", slog.String("error", err.Error()))

	return fmt.Errorf("%s: %w", op, models.ErrBlobStoreUnavailable)
}

func (c *Coordinator) observe(operation string, err error) {
	if c.metrics != nil {
		c.metrics.ObserveUpload(operation, err)
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
