package alerts

import "sync"

// Alert is a parsed service alert affecting one or more routes.
type Alert struct {
	ID       string
	Header   string
	Effect   string
	RouteIDs []int64
}

// Store holds the current service alerts in a thread-safe manner. The
// webhook reads it while the fetcher goroutine replaces its contents.
type Store struct {
	mu     sync.RWMutex
	alerts []Alert
}

// NewStore creates an empty alert store.
func NewStore() *Store {
	return &Store{}
}

// SetAlerts replaces all alerts.
func (s *Store) SetAlerts(alerts []Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = alerts
}

// CountForRoutes returns the number of distinct alerts affecting any of the
// given routes.
func (s *Store) CountForRoutes(routeIDs []int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int64]bool, len(routeIDs))
	for _, id := range routeIDs {
		wanted[id] = true
	}

	count := 0
	for _, a := range s.alerts {
		for _, id := range a.RouteIDs {
			if wanted[id] {
				count++
				break
			}
		}
	}
	return count
}

// All returns a copy of the current alerts.
func (s *Store) All() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}
