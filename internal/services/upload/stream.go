package uploadservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"notary/internal/models"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MinPartSize is the smallest part S3 accepts for any part but the last.
const MinPartSize = 5 << 20

// UploadStream splits r into partSize chunks and uploads them with at most concurrency
// parts in flight, then completes the upload in ascending part order. partSize must be
// at least MinPartSize; only the last part may be smaller.
// A failed part aborts the session. When ctx is cancelled the session is left
// InProgress and its id is returned so the caller can abort it.
func (c *Coordinator) UploadStream(ctx context.Context, key string, contentType string, r io.Reader, partSize int64, concurrency int) (string, int64, error) {
	op := pkg + "UploadStream"

	log := c.log.With(slog.String("op", op), slog.String("key", key))

	if concurrency <= 0 {
		return "", 0, fmt.Errorf("%s: concurrency must be positive: %w", op, models.ErrInvalidParams)
	}

	if partSize < c.minPartSize {
		return "", 0, fmt.Errorf("%s: part size %d below minimum %d: %w", op, partSize, c.minPartSize, models.ErrInvalidParams)
	}

	uploadID, err := c.Initiate(ctx, key, contentType)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	var (
		mu    sync.Mutex
		parts []models.CompletedPart
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var readErr error
	var partNumber int32

	for gctx.Err() == nil {
		buf := make([]byte, partSize)
		n, err := io.ReadFull(r, buf)

		// an empty stream still needs one part to complete
		if n > 0 || (partNumber == 0 && errors.Is(err, io.EOF)) {
			partNumber++
			number := partNumber
			chunk := buf[:n]
			total += int64(n)

			g.Go(func() error {
				etag, err := c.UploadPart(gctx, key, uploadID, number, bytes.NewReader(chunk))
				if err != nil {
					return err
				}
				mu.Lock()
				parts = append(parts, models.CompletedPart{PartNumber: number, ETag: etag})
				mu.Unlock()
				return nil
			})
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			readErr = err
			break
		}
	}

	err = g.Wait()
	if err == nil {
		err = readErr
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	if err != nil {
		if ctx.Err() != nil {
			log.Warn("stream upload cancelled, session left open", slog.String("upload_id", uploadID))
			return uploadID, 0, fmt.Errorf("%s: %w", op, ctx.Err())
		}

		if abortErr := c.Abort(ctx, key, uploadID); abortErr != nil {
			log.Error("failed to abort upload", slog.String("upload_id", uploadID), slog.String("error", abortErr.Error()))
		}
		return uploadID, 0, fmt.Errorf("%s: %w", op, err)
	}

	slices.SortFunc(parts, func(a, b models.CompletedPart) int {
		return int(a.PartNumber - b.PartNumber)
	})

	if err := c.Complete(ctx, key, uploadID, parts); err != nil {
		return uploadID, 0, fmt.Errorf("%s: %w", op, err)
	}

	return uploadID, total, nil
}
