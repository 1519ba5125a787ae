package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	siteRequestsTotal     *prometheus.CounterVec
	siteLatencySeconds    *prometheus.HistogramVec
	contactSubmissions    *prometheus.CounterVec
	contactDeliveries     *prometheus.CounterVec
	contactEventsFailures prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the site service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		siteRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "site_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		siteLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "site_request_latency_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"method", "route"})

		contactSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by outcome.",
		}, []string{"outcome"})

		contactDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_delivery_total",
			Help: "Notification email deliveries by result.",
		}, []string{"result"})

		contactEventsFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contact_event_publish_failures_total",
			Help: "Contact events that could not be published to the broker.",
		})

		prometheus.MustRegister(siteRequestsTotal, siteLatencySeconds, contactSubmissions, contactDeliveries, contactEventsFailures)
	})
}

// SiteRequests exposes the counter for HTTP requests.
func SiteRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return siteRequestsTotal
}

// SiteLatency exposes the latency histogram for HTTP requests.
func SiteLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return siteLatencySeconds
}

// ContactSubmissions exposes the counter for contact outcomes.
func ContactSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return contactSubmissions
}

// ContactDeliveries exposes the counter for notification deliveries.
func ContactDeliveries() *prometheus.CounterVec {
	RegisterMetrics()
	return contactDeliveries
}

// ContactEventFailures exposes the counter for failed event publishes.
func ContactEventFailures() prometheus.Counter {
	RegisterMetrics()
	return contactEventsFailures
}
