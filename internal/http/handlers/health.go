package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/payment-gateway/internal/http/respond"
	"github.com/hongminglow/payment-gateway/internal/logging"
	"github.com/hongminglow/payment-gateway/internal/storage"
)

const probeTimeout = 2 * time.Second

// StorageProbe reports storage reachability and row counts.
type StorageProbe interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (storage.Stats, error)
}

// HealthHandler returns uptime and storage status.
type HealthHandler struct {
	startedAt time.Time
	store     StorageProbe
	log       logging.Logger
}

// NewHealthHandler creates the health endpoints.
func NewHealthHandler(startedAt time.Time, store StorageProbe, log logging.Logger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, store: store, log: log}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /db-status", h.handleDBStatus)
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	body := map[string]string{
		"status":  "ok",
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
		"storage": "ok",
	}
	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn(r.Context(), "storage ping failed", "error", err)
		body["status"] = "degraded"
		body["storage"] = "unavailable"
		respond.JSON(w, http.StatusServiceUnavailable, "Service degraded", body)
		return
	}
	respond.JSON(w, http.StatusOK, "Service healthy", body)
}

func (h *HealthHandler) handleDBStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	stats, err := h.store.Stats(ctx)
	if err != nil {
		h.log.Error(r.Context(), "storage stats failed", "error", err)
		respond.Error(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, "Database connected", stats)
}
