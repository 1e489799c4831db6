package customer

import (
	"context"
	"log/slog"
	"net/http"
	utils "notary/internal/utils/http_errors"
)

func Delete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, cs CustomerService) {
	op := pkg + "Delete"

	log = log.With(slog.String("op", op), slog.String("customer_id", id))

	if err := cs.DeleteCustomer(ctx, id); err != nil {
		utils.Fail(log, w, "failed to delete customer", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		id: true,
	})
}
