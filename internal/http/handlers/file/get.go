package file

import (
	"context"
	"log/slog"
	"net/http"
	utils "notary/internal/utils/http_errors"
)

func DownloadURL(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, fs FileService) {
	op := pkg + "DownloadURL"

	log = log.With(slog.String("op", op), slog.String("file_id", id))

	url, err := fs.FileDownloadURL(ctx, id)
	if err != nil {
		utils.Fail(log, w, "failed to presign file", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, url)
}
