package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kitahub/parent-portal/internal/service"
)

// HealthServiceInterface defines the interface for health aggregation.
type HealthServiceInterface interface {
	Aggregate(ctx context.Context) *service.HealthReport
	UnhealthyFallback() *service.HealthReport
}

// HealthHandlers provides the aggregated health endpoint.
type HealthHandlers struct {
	Svc    HealthServiceInterface
	Logger *slog.Logger
}

func (h *HealthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Health handles the aggregated health check.
// GET /api/health.
//
// The endpoint must always answer: a panic escaping aggregation is
// caught here and turned into the minimal unhealthy report rather than
// falling through to the generic recover middleware.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger().ErrorContext(r.Context(), "health aggregation panicked", "error", rec)
			report := h.Svc.UnhealthyFallback()
			WriteJSON(w, report.HTTPStatus(), report)
		}
	}()

	report := h.Svc.Aggregate(r.Context())
	WriteJSON(w, report.HTTPStatus(), report)
}
