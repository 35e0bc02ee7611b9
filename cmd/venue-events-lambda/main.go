// Command venue-events-lambda serves the dispatcher behind API Gateway.
//
// Configuration comes from VENUE_EVENTS_* environment variables only.
// Logs are written to stdout for CloudWatch.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pfrederiksen/venue-events/internal/config"
	"github.com/pfrederiksen/venue-events/internal/dispatch"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/scraper"
	"github.com/pfrederiksen/venue-events/internal/source"
)

// handler adapts API Gateway proxy events to the dispatcher.
type handler struct {
	dispatcher *dispatch.Dispatcher
}

func (h *handler) handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp := h.dispatcher.Respond(ctx, req.QueryStringParameters[dispatch.SourceParam])
	return events.APIGatewayProxyResponse{
		StatusCode: resp.Status,
		Headers:    map[string]string{"Content-Type": resp.ContentType},
		Body:       string(resp.Body),
	}, nil
}

func newHandler(cfg config.Config, log *logger.Logger, opts ...scraper.Option) *handler {
	opts = append([]scraper.Option{
		scraper.WithTimeout(cfg.Timeout),
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithDetailRate(cfg.DetailRate),
		scraper.WithLogger(log),
	}, opts...)

	return &handler{
		dispatcher: dispatch.New(source.Default(), scraper.New(opts...),
			dispatch.WithYear(cfg.Year),
			dispatch.WithLogger(log),
		),
	}
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel), os.Stdout)
	logger.SetDefault(log)

	lambda.Start(newHandler(cfg, log).handle)
}
