// Package intents contains the top-level conversational flows. Each flow is
// one turn of the state machine: resolve agency, resolve stops, fetch and
// filter arrivals, speak the summary — with early exits whenever resolution
// delegates back to the platform.
package intents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nextstop/internal/alerts"
	"nextstop/internal/assistant"
	"nextstop/internal/transloc"
)

// Intent action names matched by the Dialogflow agent.
const (
	NextBusIntent         = "bus.next"
	NextBusLocationIntent = "bus.next.location"
	NextBusOptionIntent   = "bus.next.option"
	AgencyLocationIntent  = "agency.location"
	HelperResponseIntent  = "helper.response"
)

// Slot argument names.
const (
	FromArgument = "from"
	ToArgument   = "to"
)

// Source is the transit data API as consumed by the flows. Every fetch is a
// fresh request-scoped snapshot.
type Source interface {
	Stops(ctx context.Context, agencies []int64, includeRoutes bool) ([]transloc.Stop, []transloc.RouteStops, error)
	Arrivals(ctx context.Context, agencies []int64, stopID int64) ([]transloc.Arrival, error)
	Routes(ctx context.Context, agencies []int64) ([]transloc.Route, error)
	Agencies(ctx context.Context) ([]transloc.Agency, error)
}

// Service holds the shared dependencies of all intent handlers.
type Service struct {
	src    Source
	alerts *alerts.Store // nil when the alerts feed is disabled
	logger *slog.Logger
	now    func() int64
}

// NewService creates a Service. alertStore may be nil.
func NewService(src Source, alertStore *alerts.Store, logger *slog.Logger) *Service {
	return &Service{
		src:    src,
		alerts: alertStore,
		logger: logger,
		now:    func() int64 { return time.Now().Unix() },
	}
}

// Handle dispatches one turn to the flow matching the action.
func (s *Service) Handle(ctx context.Context, app assistant.App, action string) error {
	switch action {
	case NextBusIntent:
		return s.NextBus(ctx, app)
	case NextBusLocationIntent:
		return s.NextBusLocation(ctx, app)
	case NextBusOptionIntent:
		return s.NextBusOption(ctx, app)
	case AgencyLocationIntent:
		return s.AgencyLocation(ctx, app)
	case HelperResponseIntent:
		return s.HelperResponse(ctx, app)
	default:
		return fmt.Errorf("no handler for action %q", action)
	}
}
