package session

import (
	"context"
	"log/slog"
	"net/http"
	"notary/internal/dto"
	decode "notary/internal/utils/decode"
	utils "notary/internal/utils/http_errors"
)

func Add(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, sc SessionCreator) {
	op := pkg + "Add"

	log = log.With(slog.String("op", op))

	var userRequest dto.UserRequest

	if err := decode.JSON(r, &userRequest); err != nil {
		utils.Fail(log, w, "invalid request body", err)
		return
	}

	token, err := sc.Login(ctx, userRequest.Login, userRequest.Password)
	if err != nil {
		utils.Fail(log, w, "failed to login", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"token": token,
	})
}
