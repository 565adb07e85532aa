// Package metrics registers the Prometheus collectors of the server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelhouse_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelhouse_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelhouse_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Catalog
	VideoViewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelhouse_video_views_total",
			Help: "Total number of recorded video views",
		},
	)

	VideoLikesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelhouse_video_like_changes_total",
			Help: "Total number of like and unlike requests",
		},
		[]string{"action"}, // "like", "unlike"
	)

	SearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelhouse_searches_total",
			Help: "Total number of catalog searches",
		},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelhouse_search_results",
			Help:    "Number of videos returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	CatalogMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelhouse_catalog_mutations_total",
			Help: "Total number of admin catalog mutations",
		},
		[]string{"operation"}, // "create_video", "delete_video", "set_featured", "create_category"
	)

	// Recommendations
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelhouse_recommendation_duration_seconds",
			Help:    "Time spent ranking related videos",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelhouse_recommendation_results",
			Help:    "Number of related videos returned",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	// Popularity refresher
	PopularityRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelhouse_popularity_refresh_total",
			Help: "Total number of popularity refresh runs",
		},
		[]string{"result"}, // "success", "error"
	)

	PopularityRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelhouse_popularity_refresh_duration_seconds",
			Help:    "Duration of popularity refresh runs",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordView records one video view
func RecordView() {
	VideoViewsTotal.Inc()
}

// RecordLike records a like or unlike request
func RecordLike(liked bool) {
	action := "unlike"
	if liked {
		action = "like"
	}
	VideoLikesTotal.WithLabelValues(action).Inc()
}

// RecordSearch records a search and its result count
func RecordSearch(results int) {
	SearchesTotal.Inc()
	SearchResults.Observe(float64(results))
}

// RecordMutation records an admin catalog mutation
func RecordMutation(operation string) {
	CatalogMutationsTotal.WithLabelValues(operation).Inc()
}

// RecordRecommendation records a ranking run
func RecordRecommendation(duration time.Duration, results int) {
	RecommendationDuration.Observe(duration.Seconds())
	RecommendationResults.Observe(float64(results))
}

// RecordPopularityRefresh records a refresher run
func RecordPopularityRefresh(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	PopularityRefreshTotal.WithLabelValues(result).Inc()
	PopularityRefreshDuration.Observe(duration.Seconds())
}
