package file

import (
	"context"
	"log/slog"
	"net/http"
	utils "notary/internal/utils/http_errors"
)

// VerifyIntegrity recomputes the stored content digest and compares it with the
// recorded one. A mismatch is a 200 with "valid": false.
func VerifyIntegrity(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, fs FileService) {
	op := pkg + "VerifyIntegrity"

	log = log.With(slog.String("op", op), slog.String("file_id", id))

	ok, err := fs.VerifyFileIntegrity(ctx, id)
	if err != nil {
		utils.Fail(log, w, "failed to verify integrity", err)
		return
	}

	if !ok {
		log.Warn("stored content does not match recorded digest")
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"id":    id,
		"valid": ok,
	})
}

func VerifySignature(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, fs FileService) {
	op := pkg + "VerifySignature"

	log = log.With(slog.String("op", op), slog.String("file_id", id))

	ok, err := fs.VerifyFileSignature(ctx, id)
	if err != nil {
		utils.Fail(log, w, "failed to verify signature", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"id":    id,
		"valid": ok,
	})
}
