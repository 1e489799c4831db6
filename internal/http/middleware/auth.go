package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"notary/internal/models"
	utils "notary/internal/utils/http_errors"
	"strings"
)

// Auth resolves the session token from the Authorization bearer header or the
// token query parameter and stores the staff user in the request context.
func Auth(log *slog.Logger, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := pkg + "Auth"

			log := log.With(slog.String("op", op))

			token := tokenFrom(r)
			if token == "" {
				log.Warn("request without token")
				utils.WriteError(w, models.ErrInvalidCredentials)
				return
			}

			requester, err := resolver.UserByToken(r.Context(), token)
			if err != nil {
				log.Warn("failed get user by token", slog.String("error", err.Error()))
				utils.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), models.UserContextKey, requester)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the staff user placed in ctx by Auth.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(models.UserContextKey).(*models.User)
	return u, ok
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	return r.URL.Query().Get("token")
}
