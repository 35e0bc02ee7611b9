// Package limiter throttles outbound detail-page requests so a venue site
// never sees more than its agreed request rate.
package limiter

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter blocks callers until a request may proceed.
type RateLimiter interface {
	Wait(context.Context) error
	Limit() rate.Limit
}

// New returns a token bucket limiter. A zero limit means unlimited.
func New(limit rate.Limit, burst int) RateLimiter {
	if limit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(limit, burst)
}

// Multi combines limiters; Wait passes only when every limiter allows it.
// Limiters are ordered from the strictest limit first.
func Multi(limiters ...RateLimiter) RateLimiter {
	sorted := make([]RateLimiter, 0, len(limiters))
	for _, l := range limiters {
		if l != nil {
			sorted = append(sorted, l)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Limit() < sorted[j].Limit()
	})
	return &multiLimiter{limiters: sorted}
}

type multiLimiter struct {
	limiters []RateLimiter
}

func (l *multiLimiter) Wait(ctx context.Context) error {
	for _, lim := range l.limiters {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (l *multiLimiter) Limit() rate.Limit {
	if len(l.limiters) == 0 {
		return rate.Inf
	}
	return l.limiters[0].Limit()
}

// Per returns the limit allowing eventCount events every duration.
func Per(eventCount int, duration time.Duration) rate.Limit {
	if eventCount <= 0 {
		return 0
	}
	return rate.Every(duration / time.Duration(eventCount))
}
