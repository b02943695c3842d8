package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/observability"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    Pinger
	redis       Pinger
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready pings the ticket store and the session store. Either failing makes
// the service unready, since listing needs one and login needs the other.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := []struct {
		name   string
		pinger Pinger
	}{
		{"ticket_store", h.postgres},
		{"session_store", h.redis},
	}
	details := map[string]any{}
	for _, check := range checks {
		details[check.name] = "ok"
		if err := check.pinger.Ping(ctx); err != nil {
			details[check.name] = err.Error()
		}
	}
	for _, v := range details {
		if v != "ok" {
			return apperrors.NewDomainError("DEPENDENCY_UNAVAILABLE", "ticket or session store unavailable",
				fiber.StatusServiceUnavailable, details)
		}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "ready", "dependencies": details}})
}

// Metrics reports the in-memory request counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
