package transloc

import "nextstop/internal/geo"

// Stop is a fixed transit boarding location.
type Stop struct {
	ID          int64        `json:"stop_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Position    geo.Position `json:"position"`
}

// Route is a named transit line.
type Route struct {
	ID       int64  `json:"route_id"`
	LongName string `json:"long_name"`
}

// RouteStops is the stop topology of a route: the ids of the stops the route
// is predicted to serve.
type RouteStops struct {
	ID      int64   `json:"route_id"`
	StopIDs []int64 `json:"stops"`
}

// Arrival is a single predicted vehicle arrival at a stop.
type Arrival struct {
	RouteID   int64 `json:"route_id"`
	StopID    int64 `json:"stop_id"`
	Timestamp int64 `json:"timestamp"` // epoch seconds
}

// Agency is a transit operator.
type Agency struct {
	ID       int64        `json:"agency_id"`
	Position geo.Position `json:"position"`
}

type stopsResponse struct {
	Stops  []Stop       `json:"stops"`
	Routes []RouteStops `json:"routes"`
}

type arrivalsResponse struct {
	Arrivals []Arrival `json:"arrivals"`
}

type routesResponse struct {
	Routes []Route `json:"routes"`
}

type agenciesResponse struct {
	Agencies []Agency `json:"agencies"`
}
