// Package server exposes the fulfillment webhook over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nextstop/internal/analytics"
	"nextstop/internal/assistant"
	"nextstop/internal/config"
	"nextstop/internal/intents"
	"nextstop/internal/storage"
)

// Server is the HTTP server for the fulfillment webhook.
type Server struct {
	mux      *http.ServeMux
	cfg      *config.Config
	logger   *slog.Logger
	service  *intents.Service
	users    *storage.DB
	reporter *analytics.Reporter
}

// New creates a new Server with all routes registered. users and reporter
// may be nil when persistence or analytics are disabled.
func New(cfg *config.Config, service *intents.Service, users *storage.DB, reporter *analytics.Reporter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:      mux,
		cfg:      cfg,
		logger:   logger,
		service:  service,
		users:    users,
		reporter: reporter,
	}

	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Handler returns the mux wrapped with the middleware stack.
func (s *Server) Handler() http.Handler {
	return withMiddleware(s.mux, s.logger, s.cfg.WebhookSecret)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("server starting", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleWebhook runs one conversation turn: parse, dispatch, render.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := assistant.ParseWebhookRequest(r.Body)
	if err != nil {
		s.logger.Warn("bad webhook request", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		webhookRequests.WithLabelValues("unknown", "bad_request").Inc()
		return
	}

	app := assistant.NewDialogflow(req, s.logger)
	action := app.Action()
	label := metricAction(action)
	s.hydrateUser(r.Context(), app)

	outcome := s.dispatch(r.Context(), app, action)

	if !app.Responded() {
		// Either the handler failed before responding or a response guard
		// tripped. The conversation still needs a closing message.
		app.Tell("Something went wrong.")
	}

	body, err := app.MarshalResponse()
	if err != nil {
		s.logger.Error("render response", "error", err, "action", action)
		http.Error(w, "internal error", http.StatusInternalServerError)
		webhookRequests.WithLabelValues(label, "render_error").Inc()
		return
	}

	s.persistUser(r.Context(), app)
	if s.reporter != nil && s.reporter.Enabled() {
		// Best-effort, off the request path. The request context dies with
		// this handler, so the report gets a detached copy.
		go s.reporter.Report(context.WithoutCancel(r.Context()), analytics.Turn{
			MessageID: req.ID,
			SessionID: req.SessionID,
			UserID:    app.UserID(),
			Intent:    action,
			Message:   req.Result.ResolvedQuery,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)

	webhookRequests.WithLabelValues(label, outcome).Inc()
	webhookDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
}

// metricAction bounds the metric label set: the request body is untrusted,
// so only known actions become label values.
func metricAction(action string) string {
	switch action {
	case intents.NextBusIntent, intents.NextBusLocationIntent,
		intents.NextBusOptionIntent, intents.AgencyLocationIntent,
		intents.HelperResponseIntent:
		return action
	}
	return "unknown"
}

// dispatch runs the intent handler, converting panics from the
// single-response guard into a logged failure.
func (s *Server) dispatch(ctx context.Context, app *assistant.Dialogflow, action string) (outcome string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("handler panic", "action", action, "panic", rec)
			outcome = "panic"
		}
	}()

	if err := s.service.Handle(ctx, app, action); err != nil {
		s.logger.Error("handle intent", "error", err, "action", action)
		return "error"
	}
	return "ok"
}

// hydrateUser backfills the agency from the database when the platform's
// user storage arrived empty.
func (s *Server) hydrateUser(ctx context.Context, app *assistant.Dialogflow) {
	if s.users == nil || app.UserID() == "" || app.UserData().AgencyID != 0 {
		return
	}
	agencyID, err := s.users.AgencyID(ctx, app.UserID())
	if err != nil {
		s.logger.Warn("load user agency", "error", err)
		return
	}
	app.UserData().AgencyID = agencyID
}

// persistUser mirrors the turn's user storage into the database.
func (s *Server) persistUser(ctx context.Context, app *assistant.Dialogflow) {
	if s.users == nil || app.UserID() == "" || app.UserData().AgencyID == 0 {
		return
	}
	if err := s.users.SetAgencyID(ctx, app.UserID(), app.UserData().AgencyID); err != nil {
		s.logger.Warn("persist user agency", "error", err)
	}
}
