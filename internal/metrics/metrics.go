package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edunova", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edunova", Name: "handler_errors_total", Help: "Requests answered with an error payload",
	})
	GradingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edunova", Name: "grading_seconds", Help: "Quiz grading latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal, HandlerErrors, GradingDuration)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveGrading(d time.Duration) { GradingDuration.Observe(d.Seconds()) }

// Middleware counts requests by method.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RequestsTotal.WithLabelValues(r.Method).Inc()
		next.ServeHTTP(w, r)
	})
}
