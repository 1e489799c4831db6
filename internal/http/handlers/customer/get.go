package customer

import (
	"context"
	"log/slog"
	"net/http"
	utils "notary/internal/utils/http_errors"
	parseutil "notary/internal/utils/parseLimit"
)

func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, cs CustomerService) {
	op := pkg + "Get"

	log = log.With(slog.String("op", op))

	limit := parseutil.ParseLimit(r.URL.Query().Get("limit"))

	customers, err := cs.ListCustomers(ctx, limit)
	if err != nil {
		utils.Fail(log, w, "failed to list customers", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"customers": customers,
	})
}

func GetByID(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, cs CustomerService) {
	op := pkg + "GetByID"

	log = log.With(slog.String("op", op), slog.String("customer_id", id))

	customer, err := cs.CustomerByID(ctx, id)
	if err != nil {
		utils.Fail(log, w, "failed to get customer", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"customer": customer,
	})
}
