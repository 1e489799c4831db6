package upload

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"notary/internal/models"
	utils "notary/internal/utils/http_errors"
	"strconv"
)

const maxPartBytes = 5 << 30

// UploadPart stores the raw request body as one part of the upload.
func UploadPart(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, uploadID string, rawPart string, uc UploadCoordinator) {
	op := pkg + "UploadPart"

	log = log.With(slog.String("op", op), slog.String("upload_id", uploadID))

	partNumber, err := strconv.ParseInt(rawPart, 10, 32)
	if err != nil {
		utils.Fail(log, w, "invalid part number", fmt.Errorf("%w: %q", models.ErrInvalidPartNumber, rawPart))
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		utils.Fail(log, w, "missing key", fmt.Errorf("%w: key is required", models.ErrInvalidParams))
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxPartBytes)
	defer body.Close()

	etag, err := uc.UploadPart(ctx, key, uploadID, int32(partNumber), body)
	if err != nil {
		utils.Fail(log, w, "failed to upload part", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, models.CompletedPart{
		PartNumber: int32(partNumber),
		ETag:       etag,
	})
}
