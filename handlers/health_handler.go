package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/studio-dashboard/middleware"
	"github.com/upb/studio-dashboard/utils"
	"go.uber.org/zap"
)

const readinessTimeout = 5 * time.Second

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Pinger is any dependency that can report its own reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker verifies the database answers queries
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db     DatabaseChecker
	cache  Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. cache may be nil when
// sessions are cached in memory.
func NewHealthHandler(db DatabaseChecker, cache Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz. It answers as long as the process serves.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz. It reports 503 while the database or
// the shared session cache cannot be reached.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	response := HealthResponse{
		Status: "healthy",
		Checks: make(map[string]string),
	}
	httpStatus := http.StatusOK

	for _, c := range h.checks() {
		if err := c.run(ctx); err != nil {
			h.logger.Warn("readiness check failed",
				zap.String("check", c.name),
				zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
				zap.Error(err))
			response.Checks[c.name] = "unhealthy"
			response.Status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		response.Checks[c.name] = "healthy"
	}
	response.Timestamp = time.Now().UTC().Format(time.RFC3339)

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

type readinessCheck struct {
	name string
	run  func(ctx context.Context) error
}

// checks lists the dependencies readiness depends on. A nil database still
// reports healthy so the liveness-only setup in tests keeps working.
func (h *HealthHandler) checks() []readinessCheck {
	checks := []readinessCheck{{
		name: "database",
		run: func(ctx context.Context) error {
			if h.db == nil {
				return nil
			}
			return h.db.HealthCheck(ctx)
		},
	}}
	if h.cache != nil {
		checks = append(checks, readinessCheck{name: "session_cache", run: h.cache.Ping})
	}
	return checks
}
