package event

// Event represents one upcoming show listed by a venue.
// Every field is always serialized; unresolved fields are empty strings.
type Event struct {
	Date          string `json:"date"`
	Headliner     string `json:"headliner"`
	URL           string `json:"url"`
	SupportTalent string `json:"support_talent"`
	Showtime      string `json:"showtime"`
	Venue         string `json:"venue"`
	Age           string `json:"age"`
}

// Field names one Event field. The value matches the JSON key.
type Field string

const (
	FieldDate          Field = "date"
	FieldHeadliner     Field = "headliner"
	FieldURL           Field = "url"
	FieldSupportTalent Field = "support_talent"
	FieldShowtime      Field = "showtime"
	FieldVenue         Field = "venue"
	FieldAge           Field = "age"
)

// Fields lists every Event field in JSON order.
var Fields = []Field{
	FieldDate,
	FieldHeadliner,
	FieldURL,
	FieldSupportTalent,
	FieldShowtime,
	FieldVenue,
	FieldAge,
}

// Valid reports whether f names an Event field.
func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Set assigns value to the named field. Unknown fields are ignored.
func (e *Event) Set(f Field, value string) {
	switch f {
	case FieldDate:
		e.Date = value
	case FieldHeadliner:
		e.Headliner = value
	case FieldURL:
		e.URL = value
	case FieldSupportTalent:
		e.SupportTalent = value
	case FieldShowtime:
		e.Showtime = value
	case FieldVenue:
		e.Venue = value
	case FieldAge:
		e.Age = value
	}
}

// Get returns the value of the named field, or "" for unknown fields.
func (e *Event) Get(f Field) string {
	switch f {
	case FieldDate:
		return e.Date
	case FieldHeadliner:
		return e.Headliner
	case FieldURL:
		return e.URL
	case FieldSupportTalent:
		return e.SupportTalent
	case FieldShowtime:
		return e.Showtime
	case FieldVenue:
		return e.Venue
	case FieldAge:
		return e.Age
	}
	return ""
}
