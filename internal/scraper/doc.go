// Package scraper provides HTTP fetching and HTML parsing for venue listings.
//
// The scraper package fetches a venue's listing page, walks its event containers
// in document order and applies the adapter's field rules to each one. For venues
// that publish details on a separate page, Enrich fetches those pages with bounded
// concurrency and merges the results back by listing position, tolerating
// individual failures.
package scraper
