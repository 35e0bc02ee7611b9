// Package metrics exposes prometheus collectors for the scrape pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OK    = "ok"
	Error = "error"
)

// Metrics holds the pipeline collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	listingFetches *prometheus.CounterVec
	detailFetches  *prometheus.CounterVec
	events         *prometheus.CounterVec
	dispatchDur    *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.listingFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venue_events",
		Name:      "listing_fetches_total",
		Help:      "Listing page fetches by source and outcome",
	}, []string{"source", "outcome"})
	m.detailFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venue_events",
		Name:      "detail_fetches_total",
		Help:      "Detail page fetches by source and outcome",
	}, []string{"source", "outcome"})
	m.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venue_events",
		Name:      "events_returned_total",
		Help:      "Events returned to callers by source",
	}, []string{"source"})
	m.dispatchDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "venue_events",
		Name:      "dispatch_duration_seconds",
		Help:      "Time spent handling one dispatch request",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"source", "status"})

	m.registry.MustRegister(
		m.listingFetches, m.detailFetches, m.events, m.dispatchDur,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return Error
	}
	return OK
}

// ListingFetched records one listing fetch.
func (m *Metrics) ListingFetched(source string, err error) {
	if m == nil {
		return
	}
	m.listingFetches.WithLabelValues(source, outcome(err)).Inc()
}

// DetailFetched records one detail fetch.
func (m *Metrics) DetailFetched(source string, err error) {
	if m == nil {
		return
	}
	m.detailFetches.WithLabelValues(source, outcome(err)).Inc()
}

// Dispatched records a finished dispatch request.
func (m *Metrics) Dispatched(source, status string, events int, took time.Duration) {
	if m == nil {
		return
	}
	m.dispatchDur.WithLabelValues(source, status).Observe(took.Seconds())
	if events > 0 {
		m.events.WithLabelValues(source).Add(float64(events))
	}
}
