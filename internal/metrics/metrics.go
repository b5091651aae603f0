package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "feed_service"

// Metrics holds all application metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	PostsCreatedTotal    prometheus.Counter
	PostsDeletedTotal    prometheus.Counter
	CommentsCreatedTotal prometheus.Counter
	LikesTotal           *prometheus.CounterVec
	StoreErrorsTotal     *prometheus.CounterVec
	OrphanComments       prometheus.Gauge
	FeedCacheTotal       *prometheus.CounterVec
}

// New registers with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		PostsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_created_total",
			Help:      "Total number of posts created",
		}),
		PostsDeletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_deleted_total",
			Help:      "Total number of posts removed",
		}),
		CommentsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Total number of comments created",
		}),
		LikesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "likes_total",
				Help:      "Like and unlike operations",
			},
			[]string{"action"},
		),
		StoreErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Document store failures by operation",
			},
			[]string{"operation"},
		),
		OrphanComments: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orphan_comments",
			Help:      "Comments referenced by no post at the last sweep",
		}),
		FeedCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feed_cache_total",
				Help:      "Feed cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) RecordPostCreated() {
	if m == nil {
		return
	}
	m.PostsCreatedTotal.Inc()
}

func (m *Metrics) RecordPostDeleted() {
	if m == nil {
		return
	}
	m.PostsDeletedTotal.Inc()
}

func (m *Metrics) RecordCommentCreated() {
	if m == nil {
		return
	}
	m.CommentsCreatedTotal.Inc()
}

// RecordLike takes "like" or "unlike".
func (m *Metrics) RecordLike(action string) {
	if m == nil {
		return
	}
	m.LikesTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordStoreError(operation string) {
	if m == nil {
		return
	}
	m.StoreErrorsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) SetOrphanComments(n int) {
	if m == nil {
		return
	}
	m.OrphanComments.Set(float64(n))
}

// RecordFeedCache takes "hit", "miss" or "error".
func (m *Metrics) RecordFeedCache(result string) {
	if m == nil {
		return
	}
	m.FeedCacheTotal.WithLabelValues(result).Inc()
}
