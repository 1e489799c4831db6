package document

import (
	"context"
	"log/slog"
	"net/http"
	"notary/internal/dto"
	utils "notary/internal/utils/http_errors"
	parseutil "notary/internal/utils/parseLimit"
)

func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, ds DocumentService) {
	op := pkg + "Get"

	log = log.With(slog.String("op", op))

	limit := parseutil.ParseLimit(r.URL.Query().Get("limit"))

	docs, err := ds.ListDocuments(ctx, limit)
	if err != nil {
		utils.Fail(log, w, "failed to list documents", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"docs": docs,
	})
}

func GetByID(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, ds DocumentService) {
	op := pkg + "GetByID"

	log = log.With(slog.String("op", op), slog.String("document_id", id))

	details, err := ds.DocumentByID(ctx, id)
	if err != nil {
		utils.Fail(log, w, "failed to get document", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"doc": dto.NewDocumentResponse(details),
	})
}
