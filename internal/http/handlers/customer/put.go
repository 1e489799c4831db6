package customer

import (
	"context"
	"log/slog"
	"net/http"
	"notary/internal/dto"
	decode "notary/internal/utils/decode"
	utils "notary/internal/utils/http_errors"
)

func Update(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, cs CustomerService) {
	op := pkg + "Update"

	log = log.With(slog.String("op", op), slog.String("customer_id", id))

	var req dto.CustomerRequest

	if err := decode.JSON(r, &req); err != nil {
		utils.Fail(log, w, "invalid request body", err)
		return
	}

	if err := cs.UpdateCustomer(ctx, req.ToModel(id)); err != nil {
		utils.Fail(log, w, "failed to update customer", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"id": id,
	})
}
