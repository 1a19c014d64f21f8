package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sekretariat", Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"method", "route", "code"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sekretariat", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sekretariat", Name: "handler_errors_total", Help: "Handler errors answered with 5xx",
	})
	AttendanceSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sekretariat", Name: "attendance_submissions_total", Help: "Stored attendance records",
	}, []string{"status", "source"})
	AllocationRecomputes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sekretariat", Name: "allocation_recomputes_total", Help: "Activity allocation recomputations",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sekretariat", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, HandlerErrors, AttendanceSubmissions, AllocationRecomputes, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
