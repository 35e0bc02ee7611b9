package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/metrics"
	"github.com/pfrederiksen/venue-events/internal/scraper"
	"github.com/pfrederiksen/venue-events/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const crocodileListing = `<html><body><ul>
	<li class="show"><h3 class="show-title">The Thermals</h3><span class="show-date">Nov 3, 2026</span>
		<a class="show-link" href="/events/the-thermals">tickets</a></li>
	<li class="show"><h3 class="show-title">Sir Mix-A-Lot</h3><span class="show-date">Nov 4, 2026</span></li>
	<li class="show"><h3 class="show-title">Sleater-Kinney</h3><span class="show-date">Nov 5, 2026</span>
		<span class="show-room">Madame Lou's</span></li>
</ul></body></html>`

// countingTransport answers every request with a fixed status and body.
type countingTransport struct {
	calls  atomic.Int32
	status int
	body   string
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return &http.Response{
		StatusCode: c.status,
		Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:       io.NopCloser(strings.NewReader(c.body)),
		Request:    req,
	}, nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError, io.Discard)
}

func newTestDispatcher(transport http.RoundTripper, opts ...Option) *Dispatcher {
	s := scraper.New(
		scraper.WithClient(&http.Client{Transport: transport}),
		scraper.WithLogger(quietLogger()),
	)
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(source.Default(), s, opts...)
}

func TestHandle_UnknownSourceMakesNoRequest(t *testing.T) {
	transport := &countingTransport{status: http.StatusOK, body: crocodileListing}
	d := newTestDispatcher(transport)

	for _, name := range []string{"nope", "Crocodile", "CROCODILE", ""} {
		events, err := d.Handle(context.Background(), name)
		assert.Nil(t, events)
		assert.True(t, errors.Is(err, ErrUnknownSource), "%q: %v", name, err)
	}
	assert.Equal(t, int32(0), transport.calls.Load())

	resp := d.Respond(context.Background(), "nope")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "text/plain; charset=utf-8", resp.ContentType)
	assert.Contains(t, string(resp.Body), "unknown source")
	assert.Equal(t, int32(0), transport.calls.Load())
}

func TestRespond_SourceNameIsExact(t *testing.T) {
	transport := &countingTransport{status: http.StatusOK, body: crocodileListing}
	d := newTestDispatcher(transport)

	for _, name := range []string{" crocodile ", "crocodile\n", "\tneumos"} {
		resp := d.Respond(context.Background(), name)
		assert.Equal(t, http.StatusBadRequest, resp.Status, "%q", name)
		assert.Contains(t, string(resp.Body), "unknown source")
	}
	assert.Equal(t, int32(0), transport.calls.Load())

	resp := d.Respond(context.Background(), "   ")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Contains(t, string(resp.Body), "missing source")
	assert.Equal(t, int32(0), transport.calls.Load())
}

func TestHandle_ListingWithoutEnrichment(t *testing.T) {
	transport := &countingTransport{status: http.StatusOK, body: crocodileListing}
	d := newTestDispatcher(transport)

	events, err := d.Handle(context.Background(), "crocodile")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int32(1), transport.calls.Load(), "no detail requests")

	assert.Equal(t, []string{"The Thermals", "Sir Mix-A-Lot", "Sleater-Kinney"},
		[]string{events[0].Headliner, events[1].Headliner, events[2].Headliner})
	for _, evt := range events {
		assert.NotEmpty(t, evt.Venue)
	}
	assert.Equal(t, "https://www.thecrocodile.com/events/the-thermals", events[0].URL)
	assert.Equal(t, "", events[1].URL)
	assert.Equal(t, "Madame Lou's", events[2].Venue)
	assert.Equal(t, "2026-11-05", events[2].Date)
}

func TestHandle_UpstreamError(t *testing.T) {
	transport := &countingTransport{status: http.StatusServiceUnavailable}
	d := newTestDispatcher(transport)

	_, err := d.Handle(context.Background(), "neumos")
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "neumos", upstream.Source)

	var status *scraper.StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusServiceUnavailable, status.StatusCode)
	assert.False(t, errors.Is(err, ErrUnknownSource))
	assert.Equal(t, int32(1), transport.calls.Load(), "no retry")

	resp := d.Respond(context.Background(), "neumos")
	assert.Equal(t, http.StatusBadGateway, resp.Status)
}

func TestHandle_EmptyListing(t *testing.T) {
	transport := &countingTransport{status: http.StatusOK, body: `<html><body>Dark tonight</body></html>`}
	d := newTestDispatcher(transport)

	events, err := d.Handle(context.Background(), "neumos")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	resp := d.Respond(context.Background(), "neumos")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "[]", string(resp.Body))
}

// fakePipeline records how the dispatcher drives the pipeline.
type fakePipeline struct {
	year     int
	enriched bool
	events   []*event.Event
}

func (f *fakePipeline) FetchListing(_ context.Context, a *source.Adapter) ([]*event.Event, error) {
	f.year = a.FallbackYear
	return f.events, nil
}

func (f *fakePipeline) Enrich(_ context.Context, events []*event.Event, _ *source.Adapter) []*event.Event {
	f.enriched = true
	return events
}

func TestHandle_EnrichesOnlyWhenAdapterDeclaresDetail(t *testing.T) {
	clock := func() time.Time { return time.Date(2031, time.May, 1, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		source       string
		wantEnriched bool
	}{
		{"elcorazon", true},
		{"neumos", true},
		{"crocodile", false},
		{"tractor", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			p := &fakePipeline{}
			d := New(source.Default(), p, WithClock(clock), WithLogger(quietLogger()))

			events, err := d.Handle(context.Background(), tt.source)
			require.NoError(t, err)
			assert.NotNil(t, events, "nil listing becomes an empty list")
			assert.Equal(t, tt.wantEnriched, p.enriched)
			assert.Equal(t, 2031, p.year, "fallback year comes from the clock")
		})
	}
}

func TestHandle_PinnedYear(t *testing.T) {
	p := &fakePipeline{}
	d := New(source.Default(), p, WithYear(2024), WithLogger(quietLogger()))

	_, err := d.Handle(context.Background(), "tractor")
	require.NoError(t, err)
	assert.Equal(t, 2024, p.year)
}

func TestRespond_JSONShape(t *testing.T) {
	p := &fakePipeline{events: []*event.Event{{Headliner: "Fleet Foxes", Venue: "Neumos"}}}
	m := metrics.New()
	var logs bytes.Buffer
	d := New(source.Default(), p, WithMetrics(m), WithLogger(logger.New(logger.LevelInfo, &logs)))

	resp := d.Respond(context.Background(), "crocodile")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "application/json", resp.ContentType)

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(resp.Body, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, map[string]string{
		"date":           "",
		"headliner":      "Fleet Foxes",
		"url":            "",
		"support_talent": "",
		"showtime":       "",
		"venue":          "Neumos",
		"age":            "",
	}, decoded[0])

	assert.Contains(t, logs.String(), `"request_id"`)
	assert.Contains(t, logs.String(), "dispatch finished")
}

func TestServeHTTP(t *testing.T) {
	transport := &countingTransport{status: http.StatusOK, body: crocodileListing}
	mux := newTestDispatcher(transport).Routes()

	tests := []struct {
		name        string
		method      string
		target      string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{"missing source", "GET", "/events", http.StatusBadRequest, "text/plain; charset=utf-8", "missing source"},
		{"unknown source", "GET", "/events?source=paramount", http.StatusBadRequest, "text/plain; charset=utf-8", "unknown source"},
		{"known source", "GET", "/events?source=crocodile", http.StatusOK, "application/json", `"headliner":"The Thermals"`},
		{"wrong method", "POST", "/events?source=crocodile", http.StatusMethodNotAllowed, "text/plain; charset=utf-8", "not allowed"},
		{"sources", "GET", "/sources", http.StatusOK, "application/json", `["crocodile","elcorazon","neumos","tractor"]`},
		{"health", "GET", "/healthz", http.StatusOK, "text/plain; charset=utf-8", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.wantContain)
		})
	}
}
