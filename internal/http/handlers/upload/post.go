package upload

import (
	"context"
	"log/slog"
	"net/http"
	"notary/internal/dto"
	decode "notary/internal/utils/decode"
	utils "notary/internal/utils/http_errors"
)

func Initiate(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, uc UploadCoordinator) {
	op := pkg + "Initiate"

	log = log.With(slog.String("op", op))

	var req dto.InitiateUploadRequest

	if err := decode.JSON(r, &req); err != nil {
		utils.Fail(log, w, "invalid request body", err)
		return
	}

	uploadID, err := uc.Initiate(ctx, req.Key, req.ContentType)
	if err != nil {
		utils.Fail(log, w, "failed to initiate upload", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusCreated, map[string]any{
		"upload_id": uploadID,
		"key":       req.Key,
	})
}

func Complete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, uploadID string, uc UploadCoordinator) {
	op := pkg + "Complete"

	log = log.With(slog.String("op", op), slog.String("upload_id", uploadID))

	var req dto.CompleteUploadRequest

	if err := decode.JSON(r, &req); err != nil {
		utils.Fail(log, w, "invalid request body", err)
		return
	}

	if err := uc.Complete(ctx, req.Key, uploadID, req.Parts); err != nil {
		utils.Fail(log, w, "failed to complete upload", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"upload_id": uploadID,
		"key":       req.Key,
	})
}
