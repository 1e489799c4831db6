package cachedocsrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"notary/internal/models"
	cacherepo "notary/internal/repositories/cache"
	"time"
)

const pkg = "cacheDocsRepo/"

const keyPrefix = "document:"

type repository struct {
	cache       cacherepo.Cache
	documentTTL time.Duration
}

func New(cache cacherepo.Cache, documentTTL time.Duration) *repository {
	return &repository{
		cache:       cache,
		documentTTL: documentTTL,
	}
}

// Document returns nil without error on a cache miss.
func (r *repository) Document(ctx context.Context, id string) (*models.Document, error) {
	op := pkg + "Document"

	docJSON, err := r.cache.Get(ctx, keyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if docJSON == "" {
		return nil, nil
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &doc, nil
}

func (r *repository) SetDocument(ctx context.Context, doc *models.Document) error {
	op := pkg + "SetDocument"

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return r.cache.Set(ctx, keyPrefix+doc.ID, string(docJSON), r.documentTTL).Err()
}

func (r *repository) Invalidate(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, keyPrefix+id)
	}

	return r.cache.Del(ctx, keys...).Err()
}
