// Package calendar renders scraped events as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/venue-events/internal/event"
)

const prodID = "-//venue-events//venue-events//EN"

// GenerateICS generates one VCALENDAR holding an all-day VEVENT per event.
// Events without a complete YYYY-MM-DD date cannot be placed and are skipped.
func GenerateICS(events []*event.Event, now time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:" + prodID + "\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	stamp := formatICSTime(now)
	for _, evt := range events {
		day, err := time.Parse("2006-01-02", evt.Date)
		if err != nil {
			continue
		}
		writeEvent(&ics, evt, day, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.Event, day time.Time, stamp string) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	// UID - stable across runs so calendar clients update instead of duplicating
	ics.WriteString(fmt.Sprintf("UID:%s@venue-events\r\n", eventUID(evt)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))

	ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", day.Format("20060102")))
	ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", day.AddDate(0, 0, 1).Format("20060102")))

	summary := evt.Headliner
	if evt.SupportTalent != "" {
		summary = fmt.Sprintf("%s with %s", evt.Headliner, evt.SupportTalent)
	}
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary)))

	var details []string
	if evt.Showtime != "" {
		details = append(details, "Showtime: "+evt.Showtime)
	}
	if evt.Age != "" {
		details = append(details, "Age: "+evt.Age)
	}
	if len(details) > 0 {
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(strings.Join(details, "\n"))))
	}

	if evt.Venue != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(evt.Venue)))
	}
	if evt.URL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", evt.URL))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// eventUID derives a name-based UUID from the event's identity.
func eventUID(evt *event.Event) string {
	key := evt.URL
	if key == "" {
		key = strings.Join([]string{evt.Venue, evt.Date, evt.Headliner}, "|")
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// RFC 5545 text escaping
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
