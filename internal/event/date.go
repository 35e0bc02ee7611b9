package event

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DateToken identifies the role of one token in a source's raw date text.
type DateToken int

const (
	Skip DateToken = iota
	Weekday
	Month
	Day
	Year
)

// DateFormat describes how one source lays out its raw date text.
// Separators lists every rune that splits tokens, e.g. " ," for "Sept 21, 2024".
type DateFormat struct {
	Separators string
	Tokens     []DateToken
}

// Common layouts observed on venue sites.
var (
	// "Fri Mar 3"
	WeekdayMonthDay = DateFormat{Separators: " ,", Tokens: []DateToken{Weekday, Month, Day}}
	// "March 3" or "Mar 3"
	MonthDay = DateFormat{Separators: " ,", Tokens: []DateToken{Month, Day}}
	// "Sept 21, 2024"
	MonthDayYear = DateFormat{Separators: " ,", Tokens: []DateToken{Month, Day, Year}}
	// "Friday, March 3, 2024"
	WeekdayMonthDayYear = DateFormat{Separators: " ,", Tokens: []DateToken{Weekday, Month, Day, Year}}
)

// monthTable maps lowercase month names and abbreviations to two-digit months.
var monthTable = map[string]string{
	"jan": "01", "january": "01",
	"feb": "02", "february": "02",
	"mar": "03", "march": "03",
	"apr": "04", "april": "04",
	"may": "05",
	"jun": "06", "june": "06",
	"jul": "07", "july": "07",
	"aug": "08", "august": "08",
	"sep": "09", "sept": "09", "september": "09",
	"oct": "10", "october": "10",
	"nov": "11", "november": "11",
	"dec": "12", "december": "12",
}

var canonicalDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// LookupMonth returns the two-digit month for name, or "" if it is not a month.
// Matching is case-insensitive and ignores a trailing period ("Sept.").
func LookupMonth(name string) string {
	key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	return monthTable[key]
}

// Normalize converts raw source date text into YYYY-MM-DD using the source's layout.
// fallbackYear fills the year when the text carries none.
//
// Unknown months and missing days leave their segment empty rather than failing.
// Canonical input is returned unchanged. Text yielding neither a month nor a day
// is returned trimmed, as the best available value.
func Normalize(raw string, f DateFormat, fallbackYear int) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if canonicalDate.MatchString(raw) {
		return raw
	}

	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return strings.ContainsRune(f.Separators, r) || unicode.IsSpace(r)
	})

	var month, day, year string
	for i, role := range f.Tokens {
		if i >= len(tokens) {
			break
		}
		switch role {
		case Month:
			month = LookupMonth(tokens[i])
		case Day:
			day = padDay(leadingDigits(tokens[i]))
		case Year:
			year = expandYear(leadingDigits(tokens[i]))
		}
	}

	if month == "" && day == "" {
		return raw
	}
	if year == "" && fallbackYear > 0 {
		year = fmt.Sprintf("%04d", fallbackYear)
	}
	return year + "-" + month + "-" + day
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func padDay(d string) string {
	if len(d) == 1 {
		return "0" + d
	}
	return d
}

func expandYear(y string) string {
	switch len(y) {
	case 4:
		return y
	case 2:
		return "20" + y
	}
	return ""
}
