// Package arrivals joins raw arrival predictions to their routes and
// narrows them by destination using route stop topology.
package arrivals

import (
	"fmt"
	"log/slog"

	"nextstop/internal/transloc"
)

// WithRoute is an arrival annotated with its route. The join is eager: the
// record is immutable and carries no hidden recomputation.
type WithRoute struct {
	transloc.Arrival
	Route transloc.Route
}

// JoinRoutes annotates each arrival with its route. An arrival referencing a
// route absent from the routes response is a referential violation by the
// data source and aborts the turn.
func JoinRoutes(arrs []transloc.Arrival, routes []transloc.Route) ([]WithRoute, error) {
	index := make(map[int64]transloc.Route, len(routes))
	for _, route := range routes {
		index[route.ID] = route
	}

	joined := make([]WithRoute, len(arrs))
	for i, a := range arrs {
		route, ok := index[a.RouteID]
		if !ok {
			return nil, fmt.Errorf("arrival references unknown route %d", a.RouteID)
		}
		joined[i] = WithRoute{Arrival: a, Route: route}
	}
	return joined, nil
}

// FilterByDestination keeps only arrivals whose route serves the destination
// stop. Stop topology is a best-effort enrichment: a route missing from the
// topology index is excluded with a warning rather than failing the turn.
func FilterByDestination(joined []WithRoute, topology []transloc.RouteStops, destinationStopID int64, logger *slog.Logger) []WithRoute {
	index := make(map[int64]transloc.RouteStops, len(topology))
	for _, rs := range topology {
		index[rs.ID] = rs
	}

	var kept []WithRoute
	for _, a := range joined {
		rs, ok := index[a.RouteID]
		if !ok {
			logger.Warn("route missing stop topology, excluding arrival",
				"routeId", a.RouteID, "route", a.Route.LongName)
			continue
		}
		if containsStop(rs.StopIDs, destinationStopID) {
			kept = append(kept, a)
		}
	}
	return kept
}

func containsStop(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
