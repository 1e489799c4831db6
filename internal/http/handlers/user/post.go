package user

import (
	"context"
	"log/slog"
	"net/http"
	"notary/internal/dto"
	decode "notary/internal/utils/decode"
	utils "notary/internal/utils/http_errors"
)

func Add(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, sr StaffRegistrar) {
	op := pkg + "Add"

	log = log.With(slog.String("op", op))

	var userRequest dto.UserRequest

	if err := decode.JSON(r, &userRequest); err != nil {
		utils.Fail(log, w, "invalid request body", err)
		return
	}

	login, err := sr.Register(ctx, userRequest.Login, userRequest.Password, userRequest.AdminToken)
	if err != nil {
		utils.Fail(log, w, "failed to register user", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusCreated, map[string]any{
		"login": login,
	})
}
