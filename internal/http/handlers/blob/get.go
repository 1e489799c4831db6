package blob

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	utils "notary/internal/utils/http_errors"
	"path"
	"time"
)

// Get streams the object behind a presigned link issued by the local store.
func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, key string, ls LocalStore) {
	op := pkg + "Get"

	log = log.With(slog.String("op", op), slog.String("key", key))

	q := r.URL.Query()

	if err := ls.VerifyPresigned(key, q.Get("expires"), q.Get("signature"), time.Now()); err != nil {
		utils.Fail(log, w, "rejected blob link", err)
		return
	}

	body, err := ls.Get(ctx, key)
	if err != nil {
		utils.Fail(log, w, "failed to open blob", err)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)}))

	if _, err := io.Copy(w, body); err != nil {
		log.Error("failed to stream blob", slog.String("error", err.Error()))
	}
}
