// Package transloc is an HTTP client for the TransLoc-style transit data
// API. Every call returns a fresh snapshot; results are never cached across
// conversation turns.
package transloc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is an HTTP client for the transit data API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a transit data API client.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Stops fetches the stops for the given agencies. When includeRoutes is set
// the response also carries the per-route stop topology used for destination
// filtering; topology is best-effort and may be empty.
func (c *Client) Stops(ctx context.Context, agencies []int64, includeRoutes bool) ([]Stop, []RouteStops, error) {
	q := url.Values{}
	q.Set("agencies", joinIDs(agencies))
	if includeRoutes {
		q.Set("include_routes", "true")
	}

	var result stopsResponse
	if err := c.getJSON(ctx, "/stops", q, &result); err != nil {
		return nil, nil, fmt.Errorf("fetch stops: %w", err)
	}
	c.logger.Debug("fetched stops", "count", len(result.Stops), "routes", len(result.Routes))
	return result.Stops, result.Routes, nil
}

// Arrivals fetches arrival predictions for a stop.
func (c *Client) Arrivals(ctx context.Context, agencies []int64, stopID int64) ([]Arrival, error) {
	q := url.Values{}
	q.Set("agencies", joinIDs(agencies))
	q.Set("stop_id", strconv.FormatInt(stopID, 10))

	var result arrivalsResponse
	if err := c.getJSON(ctx, "/arrivals", q, &result); err != nil {
		return nil, fmt.Errorf("fetch arrivals for stop %d: %w", stopID, err)
	}
	return result.Arrivals, nil
}

// Routes fetches the routes for the given agencies.
func (c *Client) Routes(ctx context.Context, agencies []int64) ([]Route, error) {
	q := url.Values{}
	q.Set("agencies", joinIDs(agencies))

	var result routesResponse
	if err := c.getJSON(ctx, "/routes", q, &result); err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}
	return result.Routes, nil
}

// Agencies fetches all known transit agencies.
func (c *Client) Agencies(ctx context.Context) ([]Agency, error) {
	var result agenciesResponse
	if err := c.getJSON(ctx, "/agencies", nil, &result); err != nil {
		return nil, fmt.Errorf("fetch agencies: %w", err)
	}
	return result.Agencies, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
