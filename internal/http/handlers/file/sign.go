package file

import (
	"context"
	"log/slog"
	"net/http"
	utils "notary/internal/utils/http_errors"
)

func Sign(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, fs FileService) {
	op := pkg + "Sign"

	log = log.With(slog.String("op", op), slog.String("file_id", id))

	f, err := fs.SignFile(ctx, id)
	if err != nil {
		utils.Fail(log, w, "failed to sign file", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"file": f,
	})
}
