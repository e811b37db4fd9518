package services

import (
	"context"
	"sort"
	"time"

	"github.com/portfolio-site/contact-backend/logger"
	"github.com/portfolio-site/contact-backend/store"
	"github.com/portfolio-site/contact-backend/types"
	"go.uber.org/zap"
)

type HealthService struct {
	checks         map[string]store.Pinger
	activeSessions func() int
	version        string
	startTime      time.Time
	log            *zap.SugaredLogger
}

// NewHealthService builds a health service that pings every named dependency
// in checks. Stores without an external backend are simply left out.
func NewHealthService(checks map[string]store.Pinger, version string) *HealthService {
	if checks == nil {
		checks = map[string]store.Pinger{}
	}
	return &HealthService{
		checks:    checks,
		version:   version,
		startTime: time.Now(),
		log:       logger.GetLogger(),
	}
}

// SetActiveSessionsGetter wires the source of the active visitor-session count.
func (h *HealthService) SetActiveSessionsGetter(getter func() int) {
	h.activeSessions = getter
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent, len(h.checks))
	overallStatus := types.HealthStatusUp

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		component := h.checkDependency(ctx, name, h.checks[name])
		components[name] = component
		if component.Status == types.HealthStatusDown {
			overallStatus = types.HealthStatusDown
		}
	}

	sessions := 0
	if h.activeSessions != nil {
		sessions = h.activeSessions()
	}

	return types.HealthCheck{
		Status:         overallStatus,
		Components:     components,
		Version:        h.version,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
		ActiveSessions: sessions,
	}
}

func (h *HealthService) checkDependency(ctx context.Context, name string, p store.Pinger) types.HealthComponent {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		h.log.Errorw("Health check failed", "component", name, "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: name + " connection failed",
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}
