package scraper

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/metrics"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

const (
	UserAgent = "venue-events/1.0 (github.com/pfrederiksen/venue-events)"
	Timeout   = 30 * time.Second
)

// StatusError reports a non-2xx response from a venue site.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Scraper fetches venue listing and detail pages.
// It holds no per-request state and is safe for concurrent use.
type Scraper struct {
	client     *http.Client
	userAgent  string
	detailRate rate.Limit
	timeout    time.Duration
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithClient replaces the HTTP client, e.g. to install a test transport.
func WithClient(c *http.Client) Option {
	return func(s *Scraper) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout sets the per-request timeout. It also applies to a client
// installed with WithClient, whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent to venue sites.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithDetailRate caps detail requests per second within one enrichment batch.
func WithDetailRate(perSecond float64) Option {
	return func(s *Scraper) {
		s.detailRate = rate.Limit(perSecond)
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records fetch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scraper) {
		s.metrics = m
	}
}

// New creates a Scraper.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		userAgent: UserAgent,
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeout > 0 && s.client.Timeout != s.timeout {
		c := *s.client
		c.Timeout = s.timeout
		s.client = &c
	}
	return s
}

// fetchDocument GETs url and parses the body as HTML decoded to UTF-8.
func (s *Scraper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body := bufio.NewReader(resp.Body)
	e := determineEncoding(body, resp.Header.Get("Content-Type"))
	doc, err := goquery.NewDocumentFromReader(transform.NewReader(body, e.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// determineEncoding sniffs the body's charset from its first KiB and the
// Content-Type header, defaulting to UTF-8.
func determineEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	head, _ := r.Peek(1024)
	if len(head) == 0 {
		return unicode.UTF8
	}
	e, _, _ := charset.DetermineEncoding(head, contentType)
	return e
}
