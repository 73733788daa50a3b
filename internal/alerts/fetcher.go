// Package alerts polls a GTFS-RT service-alert feed and keeps the active
// alerts available for the arrival summaries.
package alerts

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Fetcher polls a GTFS-RT alerts feed and updates the store.
type Fetcher struct {
	feedURL string
	store   *Store
	client  *http.Client
	logger  *slog.Logger
}

// NewFetcher creates a GTFS-RT alerts fetcher.
func NewFetcher(feedURL string, store *Store, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		feedURL: feedURL,
		store:   store,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// Start begins polling the feed. Blocks until the context is cancelled.
func (f *Fetcher) Start(ctx context.Context) {
	f.fetch(ctx)

	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.fetch(ctx)
		case <-ctx.Done():
			f.logger.Info("alerts fetcher stopped")
			return
		}
	}
}

func (f *Fetcher) fetch(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, "GET", f.feedURL, nil)
	if err != nil {
		f.logger.Error("create alerts request", "error", err)
		return
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("fetch alerts failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("alerts feed returned non-200", "status", resp.StatusCode)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logger.Error("read alerts body", "error", err)
		return
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		f.logger.Error("parse alerts protobuf", "error", err)
		return
	}

	f.store.SetAlerts(ParseFeed(feed, f.logger))
	f.logger.Info("service alerts updated", "count", len(f.store.All()))
}

// ParseFeed extracts route-scoped alerts from a GTFS-RT feed message.
// Informed entities with non-numeric route ids are skipped; this feed is an
// enrichment, not an authority.
func ParseFeed(feed *gtfs.FeedMessage, logger *slog.Logger) []Alert {
	var alerts []Alert
	for _, entity := range feed.GetEntity() {
		a := entity.GetAlert()
		if a == nil {
			continue
		}

		alert := Alert{
			ID:     entity.GetId(),
			Header: firstTranslation(a.GetHeaderText()),
			Effect: a.GetEffect().String(),
		}

		seen := make(map[int64]bool)
		for _, ie := range a.GetInformedEntity() {
			raw := ie.GetRouteId()
			if raw == "" {
				continue
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				logger.Debug("skipping non-numeric route id in alert", "routeId", raw)
				continue
			}
			if !seen[id] {
				alert.RouteIDs = append(alert.RouteIDs, id)
				seen[id] = true
			}
		}

		if len(alert.RouteIDs) > 0 {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

func firstTranslation(ts *gtfs.TranslatedString) string {
	if ts == nil {
		return ""
	}
	for _, t := range ts.GetTranslation() {
		if text := t.GetText(); text != "" {
			return text
		}
	}
	return ""
}
