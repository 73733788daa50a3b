package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nextstop_webhook_requests_total",
		Help: "Webhook requests by action and outcome.",
	}, []string{"action", "outcome"})

	webhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nextstop_webhook_duration_seconds",
		Help:    "Webhook turn duration by action.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})
)
