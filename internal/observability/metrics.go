package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventface",
		Name:      "match_requests_total",
		Help:      "Total number of attendee match requests by outcome",
	}, []string{"outcome"})

	MatchStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventface",
		Name:      "match_stage_duration_seconds",
		Help:      "Duration of each stage of the match pipeline",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"stage"})

	MatchedEvents = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventface",
		Name:      "matched_events",
		Help:      "Number of events returned per successful match request",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
	})

	ImagesIndexed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventface",
		Name:      "images_indexed_total",
		Help:      "Total number of event images processed by the indexer by result",
	}, []string{"result"})

	FacesIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventface",
		Name:      "faces_indexed_total",
		Help:      "Total number of face embeddings written to the face index",
	})

	InferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventface",
		Name:      "inference_duration_seconds",
		Help:      "Duration of ML inference stages",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"stage"})

	IndexQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventface",
		Name:      "index_queue_depth",
		Help:      "Number of pending image index tasks",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventface",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventface",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
