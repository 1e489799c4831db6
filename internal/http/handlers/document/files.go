package document

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"notary/internal/dto"
	"notary/internal/models"
	decode "notary/internal/utils/decode"
	utils "notary/internal/utils/http_errors"
)

const maxMemory = 10 << 20

// AttachFile streams the "file" part of a multipart form into the blob store.
// The content type comes from the "content_type" form value or the part header.
func AttachFile(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, fa FileAttacher) {
	op := pkg + "AttachFile"

	log = log.With(slog.String("op", op), slog.String("document_id", docID))

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		utils.Fail(log, w, "failed to parse multipart form", fmt.Errorf("%w: multipart form", models.ErrInvalidParams))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Fail(log, w, "missing file part", fmt.Errorf("%w: file part is required", models.ErrInvalidParams))
		return
	}
	defer file.Close()

	contentType := r.FormValue("content_type")
	if contentType == "" {
		contentType = header.Header.Get("Content-Type")
	}

	f, err := fa.AttachFile(ctx, docID, header.Filename, contentType, file)
	if err != nil {
		utils.Fail(log, w, "failed to attach file", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusCreated, map[string]any{
		"file": f,
	})
}

// RegisterFile records an object previously uploaded through the multipart
// upload endpoints as a document file.
func RegisterFile(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, fa FileAttacher) {
	op := pkg + "RegisterFile"

	log = log.With(slog.String("op", op), slog.String("document_id", docID))

	var req dto.RegisterFileRequest

	if err := decode.JSON(r, &req); err != nil {
		utils.Fail(log, w, "invalid request body", err)
		return
	}

	f, err := fa.RegisterUploadedFile(ctx, docID, req.Key, req.FileName, req.ContentType)
	if err != nil {
		utils.Fail(log, w, "failed to register file", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusCreated, map[string]any{
		"file": f,
	})
}
