// Package event provides the normalized record for one venue show.
//
// The event package holds the Event type shared by every source, field names
// used by declarative extraction rules, and the date normalizer that turns each
// venue's raw date text into YYYY-MM-DD using a per-source token layout.
package event
