package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level so repeated client construction (tests, reconnects) never
// re-registers collectors.
var (
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopflow_client_request_duration_seconds",
		Help:    "Time taken for backend API requests",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})
	requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopflow_client_requests_total",
		Help: "Total number of backend API requests",
	}, []string{"endpoint", "outcome"})
)

const (
	outcomeOK        = "ok"
	outcomeTransport = "transport_error"
	outcomeHTTPError = "http_error"
)
