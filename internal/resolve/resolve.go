// Package resolve turns ambiguous, partially specified user input — a
// free-text stop name, a prior list selection, a remembered context or a raw
// device location — into a concrete transit stop or agency. Resolution never
// retries within a turn: when more user input is needed it delegates back to
// the platform and the turn ends.
package resolve

import (
	"fmt"
	"log/slog"
	"strings"

	"nextstop/internal/assistant"
	"nextstop/internal/geo"
	"nextstop/internal/transloc"
)

// Resolver resolves stops and agencies for one conversational turn.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// FindNearestStop returns the stop closest to the given coordinates.
func FindNearestStop(to geo.Coordinates, stops []transloc.Stop) (transloc.Stop, bool) {
	device := geo.CoordsToPosition(to)
	return geo.LowestCost(stops, func(s transloc.Stop) float64 {
		return geo.Distance(device, s.Position)
	})
}

// FindMatchingStop finds the stop whose name matches the query exactly,
// ignoring case and surrounding whitespace.
func FindMatchingStop(query string, stops []transloc.Stop) (transloc.Stop, bool) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	for _, s := range stops {
		if strings.ToLower(strings.TrimSpace(s.Name)) == normalized {
			return s, true
		}
	}
	return transloc.Stop{}, false
}

// StopByID looks a stop up by id in the request snapshot.
func StopByID(id int64, stops []transloc.Stop) (transloc.Stop, bool) {
	for _, s := range stops {
		if s.ID == id {
			return s, true
		}
	}
	return transloc.Stop{}, false
}

// FromStop resolves the "from" slot. Precedence, first non-Empty wins:
// selected list option, stored context, free-text query, device location.
func (r *Resolver) FromStop(app assistant.App, query string, stops []transloc.Stop) (Result[transloc.Stop], error) {
	opt, ok, err := SelectedOptionKey(app)
	if err != nil {
		return Delegating[transloc.Stop](), err
	}
	if ok {
		if res := r.StopFromOption(app, opt, SlotFrom, stops); res.Kind != KindEmpty {
			return res, nil
		}
	}

	if res := r.StopFromContext(app, FromStopKey, stops); res.Kind != KindEmpty {
		return res, nil
	}

	if query == "" {
		return r.StopByLocation(app, stops)
	}

	return r.findOrRequestMatchingStop(app, query, SlotFrom, stops), nil
}

// FromStopResumed resolves the "from" slot on a continuation turn, where it
// must already exist as the selected option or in context.
func (r *Resolver) FromStopResumed(app assistant.App, opt OptionKey, stops []transloc.Stop) Result[transloc.Stop] {
	if res := r.StopFromOption(app, opt, SlotFrom, stops); res.Kind != KindEmpty {
		return res
	}

	res := r.StopFromContext(app, FromStopKey, stops)
	return Must(app, res, "Something went wrong.", "missing stop from context", r.logger)
}

// ToStop resolves the optional "to" slot. Empty is a legitimate terminal
// outcome meaning no destination filter was requested.
func (r *Resolver) ToStop(app assistant.App, query string, stops []transloc.Stop) (Result[transloc.Stop], error) {
	opt, ok, err := SelectedOptionKey(app)
	if err != nil {
		return Delegating[transloc.Stop](), err
	}
	if ok {
		if res := r.StopFromOption(app, opt, SlotTo, stops); res.Kind != KindEmpty {
			return res, nil
		}
	}

	if res := r.StopFromContext(app, ToStopKey, stops); res.Kind != KindEmpty {
		return res, nil
	}

	if query == "" {
		return Empty[transloc.Stop](), nil
	}

	return r.findOrRequestMatchingStop(app, query, SlotTo, stops), nil
}

// StopByLocation finds the stop nearest to the device. When the location is
// not yet available it requests the permission and delegates; the turn then
// ends and the platform drives a follow-up turn with the location populated.
func (r *Resolver) StopByLocation(app assistant.App, stops []transloc.Stop) (Result[transloc.Stop], error) {
	locResult, err := r.MustLocation(app, "To find the nearest stop")
	if err != nil {
		return Delegating[transloc.Stop](), err
	}
	if locResult.Kind == KindDelegating {
		return Delegating[transloc.Stop](), nil
	}

	nearest, ok := FindNearestStop(*locResult.Value.Coordinates, stops)
	if !ok {
		return Empty[transloc.Stop](), nil
	}
	r.logger.Info("resolved nearest stop", "stop", nearest.Name, "stopId", nearest.ID)
	return Success(nearest), nil
}

// MustLocation returns the device location, requesting the permission when
// it is unknown. A failed permission request is fatal for the turn.
func (r *Resolver) MustLocation(app assistant.App, reason string) (Result[assistant.DeviceLocation], error) {
	if loc := app.DeviceLocation(); loc != nil && loc.Coordinates != nil {
		return Success(*loc), nil
	}

	r.logger.Info("requesting location permission")
	if err := app.AskForPermission(reason, assistant.PermissionDevicePreciseLocation); err != nil {
		return Delegating[assistant.DeviceLocation](), fmt.Errorf("ask for location permission: %w", err)
	}

	// The platform collects the location and re-enters through the
	// permission-response intent.
	return Delegating[assistant.DeviceLocation](), nil
}

// StopFromOption resolves a previously offered list option against the
// fresh stop snapshot.
func (r *Resolver) StopFromOption(app assistant.App, opt OptionKey, slot SlotType, stops []transloc.Stop) Result[transloc.Stop] {
	if opt.Type != slot {
		return Empty[transloc.Stop]()
	}

	stop, ok := StopByID(opt.ID, stops)
	if !ok {
		r.logger.Warn("selected stop missing from snapshot", "stopId", opt.ID, "slot", slot)
		app.Tell("The selected stop couldn't be found.")
		return Delegating[transloc.Stop]()
	}

	return Success(stop)
}

func (r *Resolver) findOrRequestMatchingStop(app assistant.App, query string, slot SlotType, stops []transloc.Stop) Result[transloc.Stop] {
	stop, ok := FindMatchingStop(query, stops)
	if !ok {
		r.UnknownStop(app, slot, query, stops)
		return Delegating[transloc.Stop]()
	}

	r.logger.Info("found matching stop", "slot", slot, "stop", stop.Name, "stopId", stop.ID)
	return Success(stop)
}

// UnknownStop handles a query that matched no stop: screen-capable clients
// get a list of candidates ranked by name similarity, voice-only clients a
// single spoken rejection.
func (r *Resolver) UnknownStop(app assistant.App, slot SlotType, query string, stops []transloc.Stop) {
	message := fmt.Sprintf("I couldn't find a stop named \"%s.\"", query)

	if !app.HasSurfaceCapability(assistant.CapabilityScreenOutput) {
		app.Tell(message)
		return
	}

	app.AskWithList(message, StopList(slot, query, stops))
}

// StopList builds a selection list of candidate stops ranked by name
// similarity to the query, closest match first. An empty query keeps the
// snapshot order.
func StopList(slot SlotType, query string, stops []transloc.Stop) assistant.List {
	ranked := stops
	if query != "" {
		ranked = geo.SortByNameDistance(stops, query, func(s transloc.Stop) string { return s.Name })
	}

	items := make([]assistant.ListItem, len(ranked))
	for i, s := range ranked {
		items[i] = assistant.ListItem{
			Key:         EncodeOptionKey(OptionKey{ID: s.ID, Type: slot}),
			Title:       s.Name,
			Description: s.Description,
		}
	}
	return assistant.List{Title: "Stops", Items: items}
}
