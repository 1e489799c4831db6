package cachesessionrepo

import (
	"context"
	"fmt"
	"notary/internal/models"
	cacherepo "notary/internal/repositories/cache"
	"time"
)

const pkg = "cacheSessionRepo/"

const keyPrefix = "session:"

// repository stores staff sessions as token -> serialized user. Sessions slide:
// every successful lookup pushes the expiry out by sessionTTL.
type repository struct {
	cache      cacherepo.Cache
	sessionTTL time.Duration
}

func New(cache cacherepo.Cache, sessionTTL time.Duration) *repository {
	return &repository{
		cache:      cache,
		sessionTTL: sessionTTL,
	}
}

func (r *repository) SaveSession(ctx context.Context, token string, userJSON string) error {
	op := pkg + "SaveSession"

	if err := r.cache.Set(ctx, keyPrefix+token, userJSON, r.sessionTTL).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) DeleteSession(ctx context.Context, token string) error {
	op := pkg + "DeleteSession"

	deleted, err := r.cache.Del(ctx, keyPrefix+token).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if deleted == 0 {
		return models.ErrSessionNotFound
	}

	return nil
}

func (r *repository) UserByToken(ctx context.Context, token string) (string, error) {
	op := pkg + "UserByToken"

	key := keyPrefix + token

	userJSON, err := r.cache.Get(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if userJSON == "" {
		return "", models.ErrSessionNotFound
	}

	// the key may expire between Get and Expire; the read still counts
	if err := r.cache.Expire(ctx, key, r.sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return userJSON, nil
}
