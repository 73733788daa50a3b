package intents

import (
	"context"

	"nextstop/internal/assistant"
	"nextstop/internal/resolve"
)

// AgencyLocation handles the continuation turn after the user granted their
// location to resolve a transit agency: it persists the nearest agency and
// flows straight into the next-bus query.
func (s *Service) AgencyLocation(ctx context.Context, app assistant.App) error {
	s.logger.Info("handling agency location intent")

	resolver := resolve.NewResolver(s.logger)

	loc := app.DeviceLocation()
	if loc == nil || loc.Coordinates == nil {
		s.logger.Warn("agency location turn without a device location")
		app.Tell("I couldn't find your current location.")
		return nil
	}

	agencyRes, err := resolver.FindAndStoreAgency(ctx, app, *loc.Coordinates, s.src)
	if err != nil {
		return err
	}
	if agencyRes.Kind != resolve.KindSuccess {
		return nil
	}

	from := argOrForwarded(app, FromArgument)
	to := argOrForwarded(app, ToArgument)
	return s.nextBusWithAgency(ctx, app, resolver, agencyRes.Value, from, to)
}
