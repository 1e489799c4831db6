package customer

import (
	"context"
	"log/slog"
	"net/http"
	"notary/internal/dto"
	decode "notary/internal/utils/decode"
	utils "notary/internal/utils/http_errors"
)

func Add(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, cs CustomerService) {
	op := pkg + "Add"

	log = log.With(slog.String("op", op))

	var req dto.CustomerRequest

	if err := decode.JSON(r, &req); err != nil {
		utils.Fail(log, w, "invalid request body", err)
		return
	}

	id, err := cs.CreateCustomer(ctx, req.ToModel(""))
	if err != nil {
		utils.Fail(log, w, "failed to create customer", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusCreated, map[string]any{
		"id": id,
	})
}
