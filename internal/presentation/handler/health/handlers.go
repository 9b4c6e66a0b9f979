package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/hilthontt/breakout/internal/infrastructure/json"
)

// Check probes one dependency. It must honour ctx.
type Check func(ctx context.Context) error

type Handler struct {
	startedAt time.Time
	checks    map[string]Check
	timeout   time.Duration
}

func NewHandler() *Handler {
	return &Handler{
		startedAt: time.Now(),
		checks:    make(map[string]Check),
		timeout:   2 * time.Second,
	}
}

// WithCheck registers a dependency probed by the readiness endpoint.
func (h *Handler) WithCheck(name string, check Check) *Handler {
	h.checks[name] = check
	return h
}

// GetHealth godoc
// @Summary      Liveness
// @Tags         health
// @Produce      json
// @Success      200 {object} healthResponse
// @Router       /health [get]
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	_ = json.Write(w, http.StatusOK, h.response("ok", nil))
}

// GetReady godoc
// @Summary      Readiness
// @Description  Probes Redis, MongoDB and RabbitMQ when they are configured
// @Tags         health
// @Produce      json
// @Success      200 {object} healthResponse
// @Failure      503 {object} healthResponse
// @Router       /ready [get]
func (h *Handler) GetReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status, code := "ok", http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			results[name] = err.Error()
			status, code = "unhealthy", http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	_ = json.Write(w, code, h.response(status, results))
}

func (h *Handler) response(status string, checks map[string]string) healthResponse {
	now := time.Now().UTC()
	return healthResponse{
		Status:    status,
		Timestamp: now.Format(time.RFC3339),
		Uptime:    now.Sub(h.startedAt).Truncate(time.Second).String(),
		Checks:    checks,
	}
}
