package cacheuploadsrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"notary/internal/models"
	cacherepo "notary/internal/repositories/cache"
	"time"
)

const pkg = "cacheUploadsRepo/"

const keyPrefix = "upload:"

// repository keeps multipart session records. Terminal sessions stay until the TTL
// runs out so late calls can be told the upload is finalized.
type repository struct {
	cache     cacherepo.Cache
	uploadTTL time.Duration
}

func New(cache cacherepo.Cache, uploadTTL time.Duration) *repository {
	return &repository{
		cache:     cache,
		uploadTTL: uploadTTL,
	}
}

func (r *repository) SaveSession(ctx context.Context, s *models.UploadSession) error {
	op := pkg + "SaveSession"

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.cache.Set(ctx, keyPrefix+s.UploadID, string(raw), r.uploadTTL).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) Session(ctx context.Context, uploadID string) (*models.UploadSession, error) {
	op := pkg + "Session"

	raw, err := r.cache.Get(ctx, keyPrefix+uploadID).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if raw == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUploadNotFound)
	}

	var s models.UploadSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &s, nil
}
