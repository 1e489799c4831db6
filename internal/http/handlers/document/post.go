package document

import (
	"context"
	"log/slog"
	"net/http"
	"notary/internal/dto"
	decode "notary/internal/utils/decode"
	utils "notary/internal/utils/http_errors"
)

// Add creates a document together with its parties.
func Add(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, ds DocumentService) {
	op := pkg + "Add"

	log = log.With(slog.String("op", op))

	var req dto.DocumentRequest

	if err := decode.JSON(r, &req); err != nil {
		utils.Fail(log, w, "invalid request body", err)
		return
	}

	id, err := ds.CreateDocument(ctx, req.ToModel(""), req.DesiredParties())
	if err != nil {
		utils.Fail(log, w, "failed to create document", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusCreated, map[string]any{
		"id": id,
	})
}
