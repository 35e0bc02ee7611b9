// Package dispatch is the single entry point that turns a source name into
// a JSON list of events.
//
// A request either succeeds with a (possibly empty) list, fails as a client
// error because the source name is missing or unknown, or fails because the
// venue's listing page could not be fetched. Per-event degradations during
// enrichment never reach the caller.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/metrics"
	"github.com/pfrederiksen/venue-events/internal/source"
)

// ErrUnknownSource is returned for a source name missing from the registry.
var ErrUnknownSource = errors.New("unknown source")

// UpstreamError reports that a venue's listing page could not be fetched.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Pipeline fetches and enriches events for one adapter.
type Pipeline interface {
	FetchListing(ctx context.Context, a *source.Adapter) ([]*event.Event, error)
	Enrich(ctx context.Context, events []*event.Event, a *source.Adapter) []*event.Event
}

// Dispatcher looks up adapters by name and runs the pipeline.
type Dispatcher struct {
	registry *source.Registry
	pipeline Pipeline
	now      func() time.Time
	year     int
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock sets the clock used to derive the fallback year.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithYear pins the fallback year. Zero keeps the clock's year.
func WithYear(year int) Option {
	return func(d *Dispatcher) {
		d.year = year
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetrics records dispatch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New creates a Dispatcher over registry and pipeline.
func New(registry *source.Registry, pipeline Pipeline, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		pipeline: pipeline,
		now:      time.Now,
		log:      logger.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Sources returns the names the dispatcher accepts.
func (d *Dispatcher) Sources() []string {
	return d.registry.Names()
}

func (d *Dispatcher) fallbackYear() int {
	if d.year > 0 {
		return d.year
	}
	return d.now().Year()
}

// Handle scrapes the named source. The returned slice is never nil on success
// and keeps the listing page's document order.
func (d *Dispatcher) Handle(ctx context.Context, name string) ([]*event.Event, error) {
	a, ok := d.registry.New(name, d.fallbackYear())
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}

	events, err := d.pipeline.FetchListing(ctx, a)
	if err != nil {
		return nil, &UpstreamError{Source: name, Err: err}
	}
	if a.Enriches() {
		events = d.pipeline.Enrich(ctx, events, a)
	}
	if events == nil {
		events = []*event.Event{}
	}
	return events, nil
}
