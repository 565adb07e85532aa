package handlers

import (
	"context"
	"net/http"
	"time"

	"reelhouse/internal/core"
)

// Pinger reports whether a backing database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler serves health and feature status endpoints
type SystemHandler struct {
	logger   *core.Logger
	registry *core.Registry
	db       Pinger
	driver   string
	started  time.Time
}

// NewSystemHandler creates a new system handler. db may be nil for stores
// without a database.
func NewSystemHandler(logger *core.Logger, registry *core.Registry, db Pinger, driver string) *SystemHandler {
	return &SystemHandler{
		logger:   logger,
		registry: registry,
		db:       db,
		driver:   driver,
		started:  time.Now(),
	}
}

// HealthCheckHandler provides a health check endpoint
func (h *SystemHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	storeStatus := "ok"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.WithContext(r.Context()).Error("Health check failed", "error", err)
			status = http.StatusServiceUnavailable
			storeStatus = "unavailable"
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	core.WriteJSON(w, status, map[string]any{
		"status":   overall,
		"service":  "reelhouse",
		"store":    map[string]string{"driver": h.driver, "status": storeStatus},
		"features": h.registry.GetFeatureStatus(),
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}
