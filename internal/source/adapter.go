// Package source holds the declarative per-venue adapters and the registry
// that the dispatcher looks them up in.
//
// An Adapter is data, not code: a listing URL, a container selector, one
// extract.Rule per event field, the venue's date layout, and optionally the
// rules for a second request to each event's detail page. Adding a venue means
// adding an entry to the venue table; the pipeline never changes.
package source

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/andybalholm/cascadia"
	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/extract"
	"golang.org/x/time/rate"
)

// DefaultDetailConcurrency bounds in-flight detail requests per adapter.
const DefaultDetailConcurrency = 2

// Adapter describes how to scrape one venue.
type Adapter struct {
	Name       string
	Venue      string // used when no venue rule resolves
	ListingURL string
	Container  string
	Fields     map[event.Field]extract.Rule
	Date       event.DateFormat
	Detail     *Detail

	// FallbackYear is used for dates that carry no year. It is set per request.
	FallbackYear int

	container cascadia.Selector
}

// Detail describes the per-event enrichment request.
type Detail struct {
	Fields      map[event.Field]extract.Rule
	Concurrency int
	Rate        rate.Limit // zero means unthrottled
	Burst       int

	// URL derives the detail page URL. Nil means the event's url field.
	URL func(*event.Event) string
}

// ContainerMatcher returns the compiled container selector.
func (a *Adapter) ContainerMatcher() cascadia.Selector {
	return a.container
}

// Enriches reports whether the adapter needs a detail request per event.
func (a *Adapter) Enriches() bool {
	return a.Detail != nil && len(a.Detail.Fields) > 0
}

// DetailURL returns the detail page URL for evt, or "" if it has none.
func (a *Adapter) DetailURL(evt *event.Event) string {
	if a.Detail == nil || evt == nil {
		return ""
	}
	if a.Detail.URL != nil {
		return a.Detail.URL(evt)
	}
	return evt.URL
}

// Concurrency returns the detail fan-out bound, never less than one.
func (a *Adapter) Concurrency() int {
	if a.Detail == nil || a.Detail.Concurrency < 1 {
		return DefaultDetailConcurrency
	}
	return a.Detail.Concurrency
}

// ResolveURL turns an href found on the listing page into an absolute URL.
func (a *Adapter) ResolveURL(href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(a.ListingURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// compile validates the adapter and compiles its container selector.
func (a *Adapter) compile() error {
	if a.Name == "" {
		return errors.New("adapter has no name")
	}
	if _, err := url.ParseRequestURI(a.ListingURL); err != nil {
		return fmt.Errorf("adapter %s: listing url: %w", a.Name, err)
	}
	sel, err := cascadia.Compile(a.Container)
	if err != nil {
		return fmt.Errorf("adapter %s: container: %w", a.Name, err)
	}
	a.container = sel

	if err := checkRules(a.Fields); err != nil {
		return fmt.Errorf("adapter %s: %w", a.Name, err)
	}
	if a.Detail != nil {
		if err := checkRules(a.Detail.Fields); err != nil {
			return fmt.Errorf("adapter %s: detail: %w", a.Name, err)
		}
	}
	return nil
}

func checkRules(rules map[event.Field]extract.Rule) error {
	for f, r := range rules {
		if !f.Valid() {
			return fmt.Errorf("unknown field %q", f)
		}
		if !r.Compiled() {
			return fmt.Errorf("field %s: rule %s was not compiled", f, r)
		}
	}
	return nil
}
