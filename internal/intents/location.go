package intents

import (
	"context"

	"nextstop/internal/assistant"
	"nextstop/internal/resolve"
	"nextstop/internal/transloc"
)

// NextBusLocation handles the continuation turn after a location permission
// round trip. The agency must already be stored; the device location, when
// granted, short-circuits "from" resolution to the nearest stop.
func (s *Service) NextBusLocation(ctx context.Context, app assistant.App) error {
	s.logger.Info("handling next bus location intent")

	resolver := resolve.NewResolver(s.logger)

	agencyRes := resolve.Must(app, resolve.StoredUserAgency(app),
		"Sorry, but I don't know which agency you belong to. Please try again later.",
		"missing stored agency", s.logger)
	if agencyRes.Kind != resolve.KindSuccess {
		return nil
	}
	agencies := []int64{agencyRes.Value}

	to := argOrForwarded(app, ToArgument)

	stops, topology, err := s.src.Stops(ctx, agencies, wantsDestination(app, to))
	if err != nil {
		return err
	}

	loc := app.DeviceLocation()
	if !app.IsPermissionGranted() || loc == nil || loc.Coordinates == nil {
		// The user declined the location. Offer the stop list instead.
		s.locationDenied(app, stops)
		return nil
	}

	nearest, ok := resolve.FindNearestStop(*loc.Coordinates, stops)
	if !ok {
		app.Tell("I couldn't find any stops. Please try again later.")
		return nil
	}
	s.logger.Info("resolved nearest stop", "stop", nearest.Name, "stopId", nearest.ID)
	resolve.StoreStopContext(app, resolve.FromStopKey, nearest)

	toRes, err := resolver.ToStop(app, to, stops)
	if err != nil {
		return err
	}
	if toRes.Kind == resolve.KindDelegating {
		recordDelegation(app, NextBusLocationIntent, "", to)
		return nil
	}

	var toStop *transloc.Stop
	if toRes.Kind == resolve.KindSuccess {
		v := toRes.Value
		toStop = &v
	}

	return s.showArrivals(ctx, app, agencies, nearest, toStop, topology)
}

func (s *Service) locationDenied(app assistant.App, stops []transloc.Stop) {
	message := "I couldn't find the nearest stop without your location."

	if !app.HasSurfaceCapability(assistant.CapabilityScreenOutput) {
		app.Tell(message)
		return
	}

	app.AskWithList(message+" Try one of the following stops.",
		resolve.StopList(resolve.SlotFrom, "", stops))
}
