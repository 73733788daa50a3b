package intents

import (
	"context"
	"fmt"
	"sync"

	"nextstop/internal/arrivals"
	"nextstop/internal/assistant"
	"nextstop/internal/resolve"
	"nextstop/internal/respond"
	"nextstop/internal/speech"
	"nextstop/internal/transloc"
)

// NextBus handles a direct "when is the next bus" query, resolving all
// slots from scratch.
func (s *Service) NextBus(ctx context.Context, app assistant.App) error {
	s.logger.Info("handling next bus intent")

	resolver := resolve.NewResolver(s.logger)

	from := argOrForwarded(app, FromArgument)
	to := argOrForwarded(app, ToArgument)
	s.logger.Info("arguments", "from", from, "to", to)

	agencyRes, err := resolver.UserAgency(ctx, app, s.src)
	if err != nil {
		return err
	}
	if agencyRes.Kind != resolve.KindSuccess {
		recordDelegation(app, NextBusIntent, from, to)
		return nil
	}

	return s.nextBusWithAgency(ctx, app, resolver, agencyRes.Value, from, to)
}

// wantsDestination reports whether this turn can resolve a destination:
// from the utterance, a stored context, or a prior "to" list selection.
// Destination resolution needs route topology, so the stop fetch must
// include it in all three cases.
func wantsDestination(app assistant.App, to string) bool {
	if to != "" || app.GetContext(resolve.ToStopKey) != nil {
		return true
	}
	opt, ok, err := resolve.SelectedOptionKey(app)
	return err == nil && ok && opt.Type == resolve.SlotTo
}

// nextBusWithAgency runs the next-bus flow once the agency is known.
func (s *Service) nextBusWithAgency(ctx context.Context, app assistant.App, resolver *resolve.Resolver, agencyID int64, from, to string) error {
	agencies := []int64{agencyID}

	stops, topology, err := s.src.Stops(ctx, agencies, wantsDestination(app, to))
	if err != nil {
		return err
	}

	fromRes, err := resolver.FromStop(app, from, stops)
	if err != nil {
		return err
	}
	fromRes = resolve.Must(app, fromRes,
		"I couldn't find any stops. Please try again later.",
		"no stops available for from resolution", s.logger)
	if fromRes.Kind != resolve.KindSuccess {
		recordDelegation(app, NextBusIntent, from, to)
		return nil
	}
	fromStop := fromRes.Value
	s.logger.Info("resolved from stop", "stop", fromStop.Name, "stopId", fromStop.ID)
	resolve.StoreStopContext(app, resolve.FromStopKey, fromStop)

	toRes, err := resolver.ToStop(app, to, stops)
	if err != nil {
		return err
	}
	if toRes.Kind == resolve.KindDelegating {
		recordDelegation(app, NextBusIntent, from, to)
		return nil
	}

	var toStop *transloc.Stop
	if toRes.Kind == resolve.KindSuccess {
		v := toRes.Value
		toStop = &v
		resolve.StoreStopContext(app, resolve.ToStopKey, v)
	}

	return s.showArrivals(ctx, app, agencies, fromStop, toStop, topology)
}

// showArrivals fetches arrivals and routes, joins and filters them, and
// speaks the summary. Arrivals and routes have no data dependency on each
// other, so the two fetches overlap.
func (s *Service) showArrivals(ctx context.Context, app assistant.App, agencies []int64, from transloc.Stop, to *transloc.Stop, topology []transloc.RouteStops) error {
	var (
		wg     sync.WaitGroup
		arrs   []transloc.Arrival
		routes []transloc.Route
		aErr   error
		rErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		arrs, aErr = s.src.Arrivals(ctx, agencies, from.ID)
	}()
	go func() {
		defer wg.Done()
		routes, rErr = s.src.Routes(ctx, agencies)
	}()
	wg.Wait()
	if aErr != nil {
		return aErr
	}
	if rErr != nil {
		return rErr
	}

	joined, err := arrivals.JoinRoutes(arrs, routes)
	if err != nil {
		return err
	}

	filtered := joined
	if to != nil {
		filtered = arrivals.FilterByDestination(joined, topology, to.ID, s.logger)
		s.logger.Info("filtered arrivals by destination", "kept", len(filtered), "total", len(joined))
	}

	message := respond.ArrivalSummary(from, to, filtered, s.now())
	if suffix := s.alertSuffix(filtered); suffix != "" {
		message += suffix
	}
	app.Tell(message)
	return nil
}

// alertSuffix returns one extra sentence when service alerts affect the
// summarized routes.
func (s *Service) alertSuffix(filtered []arrivals.WithRoute) string {
	if s.alerts == nil || len(filtered) == 0 {
		return ""
	}

	seen := make(map[int64]bool)
	var routeIDs []int64
	for _, a := range filtered {
		if !seen[a.RouteID] {
			routeIDs = append(routeIDs, a.RouteID)
			seen[a.RouteID] = true
		}
	}

	n := s.alerts.CountForRoutes(routeIDs)
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(" Heads up: %d service %s %s affecting your routes.",
		n, speech.PluralizeByCount("alert", n), speech.PluralizeDo(n))
}
