package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photogram_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photogram_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// GalleryEvents counts successful gallery mutations by kind:
	// created, updated, destroyed, liked, unliked, commented, uncommented.
	GalleryEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photogram_gallery_events_total",
			Help: "Gallery mutations by kind.",
		},
		[]string{"event"},
	)

	ChatMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogram_chat_messages_total",
			Help: "Chat messages posted.",
		},
	)
)
