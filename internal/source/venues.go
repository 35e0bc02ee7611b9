package source

import (
	"time"

	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/extract"
	"github.com/pfrederiksen/venue-events/internal/limiter"
)

// Venue listing pages.
const (
	ElCorazonURL = "https://elcorazonseattle.com/"
	NeumosURL    = "https://www.neumos.com/events"
	CrocodileURL = "https://www.thecrocodile.com/events"
	TractorURL   = "https://tractortavern.com/"
)

// Venues returns the built-in adapter table.
func Venues() []Adapter {
	return []Adapter{
		{
			Name:       "elcorazon",
			Venue:      "El Corazon",
			ListingURL: ElCorazonURL,
			Container:  "article.event",
			Fields: map[event.Field]extract.Rule{
				event.FieldDate:      extract.Text(".event-date"),
				event.FieldHeadliner: extract.Text("h3.event-title"),
				event.FieldURL:       extract.Attr("h3.event-title a", "href"),
				event.FieldShowtime:  extract.Text(".event-time"),
				event.FieldVenue:     extract.Text(".event-room"),
			},
			// "Fri Oct 7"
			Date: event.WeekdayMonthDay,
			Detail: &Detail{
				Fields: map[event.Field]extract.Rule{
					event.FieldHeadliner:     extract.Text("h1.headliner"),
					event.FieldSupportTalent: extract.Text(".support-acts"),
					event.FieldAge:           extract.Text(".age-restriction"),
				},
				Concurrency: 2,
			},
		},
		{
			Name:       "neumos",
			Venue:      "Neumos",
			ListingURL: NeumosURL,
			Container:  "div.event-list-item",
			Fields: map[event.Field]extract.Rule{
				// data-date="November 3, 2026"
				event.FieldDate:      extract.Attr("", "data-date"),
				event.FieldHeadliner: extract.Text(".event-name"),
				event.FieldURL:       extract.Attr(".event-name a", "href"),
				event.FieldShowtime:  extract.Text(".doors-time"),
			},
			Date: event.MonthDayYear,
			Detail: &Detail{
				Fields: map[event.Field]extract.Rule{
					event.FieldSupportTalent: extract.Text(".supporting-talent"),
					event.FieldAge:           extract.Text(".age-limit"),
				},
				Concurrency: 2,
				Rate:        limiter.Per(4, time.Second),
				Burst:       2,
			},
		},
		{
			Name:       "crocodile",
			Venue:      "The Crocodile",
			ListingURL: CrocodileURL,
			Container:  "li.show",
			Fields: map[event.Field]extract.Rule{
				event.FieldDate:          extract.Text(".show-date"),
				event.FieldHeadliner:     extract.Text(".show-title"),
				event.FieldURL:           extract.Attr("a.show-link", "href"),
				event.FieldSupportTalent: extract.Text(".show-support"),
				event.FieldShowtime:      extract.Text(".show-time"),
				event.FieldVenue:         extract.Text(".show-room"),
				event.FieldAge:           extract.Text(".show-age"),
			},
			// "Nov 3, 2026"
			Date: event.MonthDayYear,
		},
		{
			Name:       "tractor",
			Venue:      "Tractor Tavern",
			ListingURL: TractorURL,
			Container:  "div.tw-section",
			Fields: map[event.Field]extract.Rule{
				event.FieldDate:          extract.Text(".tw-event-date"),
				event.FieldHeadliner:     extract.Text(".tw-name"),
				event.FieldURL:           extract.Attr(".tw-name a", "href"),
				event.FieldSupportTalent: extract.Text(".tw-opening-act"),
				event.FieldShowtime:      extract.Text(".tw-event-time"),
				event.FieldAge:           extract.Text(".tw-age-restriction"),
			},
			// "Sat, Nov 14"
			Date: event.WeekdayMonthDay,
		},
	}
}

var defaultRegistry = MustNewRegistry(Venues()...)

// Default returns the registry of built-in venues.
func Default() *Registry {
	return defaultRegistry
}
