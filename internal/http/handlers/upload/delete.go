package upload

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"notary/internal/models"
	utils "notary/internal/utils/http_errors"
)

func Abort(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, uploadID string, uc UploadCoordinator) {
	op := pkg + "Abort"

	log = log.With(slog.String("op", op), slog.String("upload_id", uploadID))

	key := r.URL.Query().Get("key")
	if key == "" {
		utils.Fail(log, w, "missing key", fmt.Errorf("%w: key is required", models.ErrInvalidParams))
		return
	}

	if err := uc.Abort(ctx, key, uploadID); err != nil {
		utils.Fail(log, w, "failed to abort upload", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		uploadID: true,
	})
}
