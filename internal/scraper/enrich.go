package scraper

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/limiter"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/source"
	"golang.org/x/sync/semaphore"
)

// outcome is the tagged result of one detail fetch, keyed by the event's
// position in the listing.
type outcome struct {
	index  int
	url    string
	fields map[event.Field]string
	err    error
}

// Enrich fetches each event's detail page, at most the adapter's concurrency
// bound at a time, and fills the adapter's detail fields.
//
// The result has the same length and order as events regardless of completion
// order. A failed detail fetch is logged and leaves that event as it was; it never
// fails the batch. events is not modified.
func (s *Scraper) Enrich(ctx context.Context, events []*event.Event, a *source.Adapter) []*event.Event {
	out := make([]*event.Event, len(events))
	for i, evt := range events {
		cp := *evt
		out[i] = &cp
	}
	if !a.Enriches() || len(out) == 0 {
		return out
	}

	sem := semaphore.NewWeighted(int64(a.Concurrency()))
	lim := limiter.Multi(
		limiter.New(a.Detail.Rate, a.Detail.Burst),
		limiter.New(s.detailRate, 1),
	)
	results := make(chan outcome, len(out))

	pending := 0
	for i, evt := range out {
		url := a.ResolveURL(a.DetailURL(evt))
		if url == "" {
			continue
		}
		pending++

		if err := sem.Acquire(ctx, 1); err != nil {
			results <- outcome{index: i, url: url, err: fmt.Errorf("waiting for fetch slot: %w", err)}
			continue
		}
		go func(index int, url string) {
			defer sem.Release(1)
			results <- s.fetchDetail(ctx, lim, a, index, url)
		}(i, url)
	}

	failed := 0
	for n := 0; n < pending; n++ {
		res := <-results
		s.metrics.DetailFetched(a.Name, res.err)
		if res.err != nil {
			failed++
			s.log.Warn("detail fetch failed", logger.Fields{
				"source": a.Name,
				"index":  res.index,
				"url":    res.url,
			}, res.err)
			continue
		}
		for f, v := range res.fields {
			out[res.index].Set(f, v)
		}
	}

	s.log.Debug("enrichment finished", logger.Fields{
		"source":    a.Name,
		"events":    len(out),
		"scheduled": pending,
		"failed":    failed,
	})
	return out
}

// fetchDetail runs one detail request. A panic while parsing is reported as
// a failed outcome so the collector always receives one result per task.
func (s *Scraper) fetchDetail(ctx context.Context, lim limiter.RateLimiter, a *source.Adapter, index int, url string) (res outcome) {
	res = outcome{index: index, url: url}
	defer func() {
		if r := recover(); r != nil {
			res.fields = nil
			res.err = fmt.Errorf("detail task panicked: %v", r)
		}
	}()

	if err := lim.Wait(ctx); err != nil {
		res.err = fmt.Errorf("rate limit: %w", err)
		return res
	}
	doc, err := s.fetchDocument(ctx, url)
	if err != nil {
		res.err = err
		return res
	}
	res.fields = extractFields(doc.Selection, a.Detail.Fields, a)
	return res
}
