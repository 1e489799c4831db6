package authservice

import (
	"context"
	"notary/internal/models"
)

// UserAdder persists a new staff account. Duplicate logins yield models.ErrUserExists.
type UserAdder interface {
	AddUser(ctx context.Context, user models.User) error
}

// UserProvider looks staff up by login, ignoring case. Unknown logins yield models.ErrUserNotFound.
type UserProvider interface {
	UserByLogin(ctx context.Context, login string) (*models.User, error)
}

// SessionStorer keeps token -> user JSON. Lookups extend the session and unknown
// tokens yield models.ErrSessionNotFound.
type SessionStorer interface {
	SaveSession(ctx context.Context, token string, userJSON string) error
	DeleteSession(ctx context.Context, token string) error
	UserByToken(ctx context.Context, token string) (string, error)
}
