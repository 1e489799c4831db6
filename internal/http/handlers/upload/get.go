package upload

import (
	"context"
	"log/slog"
	"net/http"
	utils "notary/internal/utils/http_errors"
)

func Status(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, uploadID string, uc UploadCoordinator) {
	op := pkg + "Status"

	log = log.With(slog.String("op", op), slog.String("upload_id", uploadID))

	session, err := uc.Session(ctx, uploadID)
	if err != nil {
		utils.Fail(log, w, "failed to get upload session", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, session)
}
