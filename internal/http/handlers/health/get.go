package health

import (
	"context"
	"log/slog"
	"net/http"
	"notary/internal/models"
	utils "notary/internal/utils/http_errors"
	"time"
)

const readyTimeout = 2 * time.Second

func Live(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request) {
	utils.WriteResponse(log, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports 503 while postgres or redis cannot be reached.
func Ready(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, checker ReadinessChecker) {
	op := pkg + "Ready"

	log = log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	if err := checker.Ready(ctx); err != nil {
		log.Error("dependency not ready", slog.String("error", err.Error()))
		utils.WriteError(w, models.ErrUpstreamUnavailable)
		return
	}

	utils.WriteResponse(log, w, http.StatusOK, map[string]string{"status": "ready"})
}
