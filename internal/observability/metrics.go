package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	contactSubmissions  *prometheus.CounterVec
	mailDispatchSeconds *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors exposed by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		contactSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by terminal outcome.",
		}, []string{"outcome"})

		mailDispatchSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mail_dispatch_duration_seconds",
			Help:    "Time spent handing contact email to the mail provider.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"provider", "result"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, contactSubmissions, mailDispatchSeconds)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// ContactSubmissions exposes the contact outcome counter.
func ContactSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return contactSubmissions
}

// MailDispatch exposes the mail dispatch latency histogram.
func MailDispatch() *prometheus.HistogramVec {
	RegisterMetrics()
	return mailDispatchSeconds
}
