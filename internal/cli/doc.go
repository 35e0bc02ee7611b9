// Package cli implements the command-line interface for venue-events.
//
// The cli package provides the Cobra-based CLI with commands to scrape one venue
// (text or JSON output), list the registered sources, and serve the dispatcher
// over HTTP alongside a Prometheus /metrics endpoint. It wires config, logger,
// metrics, scraper and dispatch together for each invocation.
package cli
