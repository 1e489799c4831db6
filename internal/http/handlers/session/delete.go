package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"notary/internal/models"
	utils "notary/internal/utils/http_errors"
)

// Delete ends a session. Unknown tokens are treated as already logged out.
func Delete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, token string, sd SessionDeleter) {
	op := pkg + "Delete"

	log = log.With(slog.String("op", op))

	if err := sd.Logout(ctx, token); err != nil && !errors.Is(err, models.ErrSessionNotFound) {
		utils.Fail(log, w, "failed to delete session", err)
		return
	}

	log.Debug("session closed")

	utils.WriteResponse(log, w, http.StatusOK, map[string]bool{"logged_out": true})
}
