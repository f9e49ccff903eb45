package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quizsquirrel",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quizsquirrel",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quizsquirrel",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	responsesScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quizsquirrel",
			Subsystem: "quizzes",
			Name:      "responses_scored_total",
			Help:      "Total number of quiz responses scored.",
		},
		[]string{"bucket"},
	)

	messagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quizsquirrel",
			Subsystem: "messaging",
			Name:      "messages_sent_total",
			Help:      "Total number of direct messages sent.",
		},
	)

	crossPosts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quizsquirrel",
			Subsystem: "social",
			Name:      "cross_posts_total",
			Help:      "Total number of cross-post attempts by provider and status.",
		},
		[]string{"provider", "status"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		responsesScored,
		messagesSent,
		crossPosts,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordResponseScored buckets a scored quiz response by score decile.
func RecordResponseScored(score int) {
	bucket := "0-49"
	switch {
	case score >= 100:
		bucket = "100"
	case score >= 75:
		bucket = "75-99"
	case score >= 50:
		bucket = "50-74"
	}
	responsesScored.WithLabelValues(bucket).Inc()
}

// RecordMessageSent counts a delivered direct message.
func RecordMessageSent() {
	messagesSent.Inc()
}

// RecordCrossPost counts a cross-post attempt outcome.
func RecordCrossPost(provider, status string) {
	if provider == "" {
		provider = "unknown"
	}
	crossPosts.WithLabelValues(provider, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource IDs so label cardinality stays bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		// Even segments name resources, odd segments carry IDs, except for
		// fixed verbs like publish, like, read-all.
		if i%2 == 1 && !isVerbSegment(p) {
			out = append(out, ":id")
			continue
		}
		out = append(out, p)
	}
	return "/" + strings.Join(out, "/")
}

func isVerbSegment(s string) bool {
	switch s {
	case "register", "login", "logout", "me", "follow", "followers", "following",
		"block", "publish", "responses", "comments", "like", "join", "leave",
		"members", "invitations", "accept", "decline", "messages", "read",
		"read-all", "unread-count", "connections", "posts":
		return true
	}
	return false
}
