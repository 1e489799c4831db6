package document

import (
	"context"
	"log/slog"
	"net/http"
	"notary/internal/dto"
	decode "notary/internal/utils/decode"
	utils "notary/internal/utils/http_errors"
)

// Update replaces the document's fields and reconciles its parties against the
// request's party list.
func Update(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, ds DocumentService) {
	op := pkg + "Update"

	log = log.With(slog.String("op", op), slog.String("document_id", id))

	var req dto.DocumentRequest

	if err := decode.JSON(r, &req); err != nil {
		utils.Fail(log, w, "invalid request body", err)
		return
	}

	if err := ds.UpdateDocument(ctx, req.ToModel(id), req.DesiredParties()); err != nil {
		utils.Fail(log, w, "failed to update document", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"id": id,
	})
}
