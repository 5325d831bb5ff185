// Package metrics provides Prometheus metrics collection for the portal.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects portal activity metrics.
type Collector struct {
	logins          *prometheus.CounterVec
	passwordChanges *prometheus.CounterVec
	accountsCreated prometheus.Counter
	httpDuration    *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with the given
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_login_attempts_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		passwordChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_password_changes_total",
			Help: "Password change attempts by result.",
		}, []string{"result"}),
		accountsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_accounts_created_total",
			Help: "Accounts created through the portal.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinel_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status_code"}),
	}

	reg.MustRegister(
		c.logins,
		c.passwordChanges,
		c.accountsCreated,
		c.httpDuration,
	)

	return c
}

// RecordLogin records a login attempt.
func (c *Collector) RecordLogin(success bool) {
	c.logins.WithLabelValues(result(success)).Inc()
}

// RecordPasswordChange records a password change attempt.
func (c *Collector) RecordPasswordChange(success bool) {
	c.passwordChanges.WithLabelValues(result(success)).Inc()
}

// RecordAccountCreated records a successful account creation.
func (c *Collector) RecordAccountCreated() {
	c.accountsCreated.Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler returns an HTTP handler exposing the registry's metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Middleware records request durations for every handled request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		c.httpDuration.
			WithLabelValues(r.Method, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
