package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness answers as long as the process is serving requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness additionally requires a reachable database; a failed ping
// reports 503 so the load balancer stops routing here.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	status, dbCheck := "ok", "ok"
	code := http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		slog.Warn("readiness check failed: database unreachable", "error", err)
		status, dbCheck = "down", "down"
		code = http.StatusServiceUnavailable
	}

	RespondJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    map[string]string{"database": dbCheck},
	})
}
