package handlers

import (
	"context"
	"time"

	"github.com/benx421/ledger/internal/api"
)

const healthPingTimeout = 2 * time.Second

// GetHealth handles GET /health. It reports unhealthy when the ledger store
// does not answer a ping.
func (h *Handler) GetHealth(
	ctx context.Context,
	_ api.GetHealthRequestObject,
) (api.GetHealthResponseObject, error) {
	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	if err := h.healthChecker.PingContext(pingCtx); err != nil {
		h.logger.ErrorContext(ctx, "health check failed: ledger store unreachable", "error", err)
		return api.GetHealth503JSONResponse{
			Status: api.Unhealthy,
		}, nil
	}

	return api.GetHealth200JSONResponse{
		Status: api.Healthy,
	}, nil
}
