package signing

import (
	"context"
	"log/slog"
	"net/http"
	utils "notary/internal/utils/http_errors"
)

// PublicKey publishes the verification key so signatures can be checked offline.
func PublicKey(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, kp KeyProvider) {
	op := pkg + "PublicKey"

	log = log.With(slog.String("op", op))

	key, err := kp.PublicKey(ctx)
	if err != nil {
		utils.Fail(log, w, "failed to get public key", err)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]any{
		"algorithm":  "RSASSA_PKCS1_V1_5_SHA_256",
		"public_key": key,
	})
}
