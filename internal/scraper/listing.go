package scraper

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/extract"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/source"
)

// FetchListing fetches the adapter's listing page and returns one partial event
// per container, in document order. Any fetch failure is returned; there is no retry.
func (s *Scraper) FetchListing(ctx context.Context, a *source.Adapter) ([]*event.Event, error) {
	doc, err := s.fetchDocument(ctx, a.ListingURL)
	s.metrics.ListingFetched(a.Name, err)
	if err != nil {
		return nil, fmt.Errorf("fetching listing %s: %w", a.ListingURL, err)
	}

	events := parseListing(doc.Selection, a)
	s.log.Debug("listing parsed", logger.Fields{
		"source": a.Name,
		"url":    a.ListingURL,
		"events": len(events),
	})
	return events, nil
}

// parseListing applies the adapter's container and field rules to a parsed page.
func parseListing(doc *goquery.Selection, a *source.Adapter) []*event.Event {
	containers := doc.FindMatcher(a.ContainerMatcher())

	events := make([]*event.Event, 0, containers.Length())
	containers.Each(func(_ int, sel *goquery.Selection) {
		evt := &event.Event{}
		applyRules(evt, sel, a.Fields, a)
		if evt.Venue == "" {
			evt.Venue = a.Venue
		}
		events = append(events, evt)
	})
	return events
}

// extractFields applies rules to sel and post-processes urls and dates.
func extractFields(sel *goquery.Selection, rules map[event.Field]extract.Rule, a *source.Adapter) map[event.Field]string {
	values := make(map[event.Field]string, len(rules))
	for f, rule := range rules {
		v := rule.Extract(sel)
		switch f {
		case event.FieldURL:
			v = a.ResolveURL(v)
		case event.FieldDate:
			v = event.Normalize(v, a.Date, a.FallbackYear)
		}
		values[f] = v
	}
	return values
}

func applyRules(evt *event.Event, sel *goquery.Selection, rules map[event.Field]extract.Rule, a *source.Adapter) {
	for f, v := range extractFields(sel, rules, a) {
		evt.Set(f, v)
	}
}
