package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/blackjack-go/internal/api/response"
)

// Pinger is implemented by storage backends that can check connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports server and storage health
type HealthHandler struct {
	storageType string
	pinger      Pinger
}

// NewHealthHandler creates a new HealthHandler. pinger may be nil for
// in-process storage.
func NewHealthHandler(storageType string, pinger Pinger) *HealthHandler {
	return &HealthHandler{storageType: storageType, pinger: pinger}
}

// Get handles GET /health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "degraded", Storage: h.storageType})
			return
		}
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: h.storageType})
}
