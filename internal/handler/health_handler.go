package handler

import (
	"net/http"
	"time"

	"github.com/danangwn/vote-app-backend/pkg/database"
	"github.com/danangwn/vote-app-backend/pkg/logger"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *database.PostgresDB
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.PostgresDB, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	if err := h.db.Health(r.Context()); err != nil {
		h.logger.WithError(err).Error("Database health check failed")
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   "vote-app-backend",
	})
}
