package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/venue-events/internal/calendar"
	"github.com/pfrederiksen/venue-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// OutputResult contains data to be output
type OutputResult struct {
	Source     string         `json:"source"`
	FetchedAt  time.Time      `json:"fetched_at"`
	EventCount int            `json:"event_count"`
	Events     []*event.Event `json:"events"`
}

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatText, FormatJSON, FormatICS:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", s)
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(result.Events, result.FetchedAt))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	if result.Events == nil {
		result.Events = []*event.Event{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text, one block per event
// in listing order.
func writeText(w io.Writer, result *OutputResult) error {
	if result.EventCount == 0 {
		_, err := fmt.Fprintf(w, "No events found for %s.\n", result.Source)
		return err
	}

	for _, evt := range result.Events {
		date := evt.Date
		if date == "" {
			date = "TBD"
		}
		fmt.Fprintf(w, "%-10s  %s", date, evt.Headliner)
		if evt.Venue != "" {
			fmt.Fprintf(w, " @ %s", evt.Venue)
		}
		fmt.Fprintln(w)

		writeDetail(w, "With", evt.SupportTalent)
		writeDetail(w, "Showtime", evt.Showtime)
		writeDetail(w, "Age", evt.Age)
		writeDetail(w, "URL", evt.URL)
	}

	noun := "events"
	if result.EventCount == 1 {
		noun = "event"
	}
	_, err := fmt.Fprintf(w, "\nTotal: %d %s from %s\n", result.EventCount, noun, result.Source)
	return err
}

func writeDetail(w io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(w, "            %s: %s\n", label, value)
	}
}
