package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/pfrederiksen/venue-events/internal/config"
	"github.com/pfrederiksen/venue-events/internal/dispatch"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/metrics"
	"github.com/pfrederiksen/venue-events/internal/scraper"
	"github.com/pfrederiksen/venue-events/internal/source"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

const shutdownTimeout = 10 * time.Second

// app holds the components built from configuration for one invocation.
type app struct {
	configPath string
	logLevel   string
	client     *http.Client

	cfg        config.Config
	log        *logger.Logger
	logCloser  io.Closer
	metrics    *metrics.Metrics
	dispatcher *dispatch.Dispatcher
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

// newRootCmd builds the command tree. A nil client uses the scraper's default.
func newRootCmd(client *http.Client) *cobra.Command {
	a := &app{client: client}

	cmd := &cobra.Command{
		Use:   "venue-events",
		Short: "Aggregate upcoming shows from venue websites",
		Long: `A tool to scrape upcoming live-event listings from venue websites
and return them as normalized event records.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	cmd.AddCommand(a.scrapeCmd(), a.sourcesCmd(), a.serveCmd())
	return cmd
}

// setup loads configuration and builds the logger, metrics, scraper and dispatcher.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		a.log, a.logCloser = logger.NewFile(level, cfg.LogFile)
	} else {
		a.log = logger.New(level, cmd.ErrOrStderr())
	}
	logger.SetDefault(a.log)

	a.metrics = metrics.New()

	opts := []scraper.Option{
		scraper.WithTimeout(cfg.Timeout),
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithDetailRate(cfg.DetailRate),
		scraper.WithLogger(a.log),
		scraper.WithMetrics(a.metrics),
	}
	if a.client != nil {
		opts = append(opts, scraper.WithClient(a.client))
	}

	a.dispatcher = dispatch.New(source.Default(), scraper.New(opts...),
		dispatch.WithYear(cfg.Year),
		dispatch.WithLogger(a.log),
		dispatch.WithMetrics(a.metrics),
	)
	return nil
}

func (a *app) teardown() {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func (a *app) scrapeCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "scrape <source>",
		Short: "Scrape one venue and print its upcoming events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(strings.ToLower(flagFormat))
			if err != nil {
				return err
			}

			name := args[0]
			events, err := a.dispatcher.Handle(cmd.Context(), name)
			if errors.Is(err, dispatch.ErrUnknownSource) {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(a.dispatcher.Sources(), ", "))
			}
			if err != nil {
				return fmt.Errorf("scraping %s: %w", name, err)
			}

			result := &OutputResult{
				Source:     name,
				FetchedAt:  time.Now().UTC(),
				EventCount: len(events),
				Events:     events,
			}
			if err := WriteOutput(cmd.OutOrStdout(), result, format); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")
	return cmd
}

func (a *app) sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the registered venue sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SOURCE\tVENUE\tDETAIL\tLISTING")
			for _, name := range a.dispatcher.Sources() {
				adapter, _ := source.Default().New(name, 0)
				detail := "no"
				if adapter.Enriches() {
					detail = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", adapter.Name, adapter.Venue, detail, adapter.ListingURL)
			}
			return tw.Flush()
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var flagListen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve events over HTTP",
		Long: `Serve GET /events?source=<name>, /sources, /healthz and /metrics.
The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := a.cfg.Listen
			if flagListen != "" {
				addr = flagListen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, newServer(addr, a.dispatcher, a.metrics))
		},
	}

	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (overrides config)")
	return cmd
}

// newServer mounts the dispatcher routes and the metrics endpoint.
func newServer(addr string, d *dispatch.Dispatcher, m *metrics.Metrics) *http.Server {
	mux := d.Routes()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serve runs srv until ctx is done, then drains in-flight requests.
func (a *app) serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", logger.Fields{"addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
