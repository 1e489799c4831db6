package middleware

import (
	"context"
	"notary/internal/models"
)

const pkg = "middleware/"

// SessionResolver maps a bearer token to the staff member who owns it.
type SessionResolver interface {
	UserByToken(ctx context.Context, token string) (*models.User, error)
}

// RequestObserver receives one sample per finished request, keyed by route template.
type RequestObserver interface {
	ObserveHTTPRequest(method, route string, code int, seconds float64)
}
