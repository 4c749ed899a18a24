package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/rds-pricing-catalog/internal/catalog"
	"github.com/rshade/rds-pricing-catalog/internal/feed"
	"github.com/rshade/rds-pricing-catalog/internal/fetch"
	"github.com/rshade/rds-pricing-catalog/internal/ingest"
)

// app carries the state shared by all subcommands.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger

	feedsFile   string
	namesFile   string
	baseURL     string
	timeout     time.Duration
	concurrency int
	retries     int
	failFast    bool
	logLevel    string
	metricsFile string
	fromDir     string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "rds-pricing",
		Short: "Build the AWS RDS pricing catalog from the public pricing feeds",
		Long: `rds-pricing fetches the AWS RDS on-demand and reserved pricing feeds and
normalizes them into one catalog keyed by region, instance type, engine,
deployment topology, license model and reservation.

Examples:
  rds-pricing urls --shape reserved_term
  rds-pricing ingest --output catalog.json
  rds-pricing price us-east-1 db.m4.large --key mysql/on_demand/-/single_az/included`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.feedsFile, "feeds", "", "feed tables YAML (default: embedded tables)")
	flags.StringVar(&a.namesFile, "names", "", "instance-name table YAML (default: embedded table)")
	flags.StringVar(&a.baseURL, "base-url", "", "override the feed base URL (env "+envBaseURL+")")
	flags.DurationVar(&a.timeout, "timeout", fetch.DefaultTimeout, "per-feed request timeout (env "+envTimeout+")")
	flags.IntVar(&a.concurrency, "concurrency", ingest.DefaultConcurrency, "feeds fetched in parallel (env "+envConcurrency+")")
	flags.IntVar(&a.retries, "retries", 2, "retries for transport errors and 5xx responses")
	flags.BoolVar(&a.failFast, "fail-fast", false, "abort on the first feed that cannot be fetched or decoded")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (env "+envLogLevel+")")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file after ingestion")
	flags.StringVar(&a.fromDir, "from-dir", "", "read feeds recorded by the download command instead of fetching them")

	root.AddCommand(newURLsCmd(a), newDownloadCmd(a), newIngestCmd(a), newPriceCmd(a))
	return root
}

// setup builds the logger and merges environment settings into flags that
// were not given explicitly.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	env := parseEnvConfig(logger)
	flags := cmd.Flags()
	if !flags.Changed("base-url") {
		a.baseURL = env.BaseURL
	}
	if !flags.Changed("timeout") {
		a.timeout = env.Timeout
	}
	if !flags.Changed("concurrency") {
		a.concurrency = env.Concurrency
	}
	if a.concurrency < 1 {
		return fmt.Errorf("invalid --concurrency %d: must be at least 1", a.concurrency)
	}
	if a.retries < 0 {
		return fmt.Errorf("invalid --retries %d: must not be negative", a.retries)
	}

	level := env.LogLevel
	if a.logLevel != "" {
		parsed, err := zerolog.ParseLevel(a.logLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
		}
		level = parsed
	}
	a.logger = logger.Level(level)
	return nil
}

// loadConfig returns the feed tables selected by --feeds and --names.
func (a *app) loadConfig() (*feed.Config, error) {
	feeds := feed.DefaultFeedTables()
	names := feed.DefaultNameTable()

	if a.feedsFile != "" {
		f, err := os.Open(a.feedsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open feed tables: %w", err)
		}
		defer f.Close()
		feeds = f
	}
	if a.namesFile != "" {
		f, err := os.Open(a.namesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open instance names: %w", err)
		}
		defer f.Close()
		names = f
	}

	cfg, err := feed.LoadConfig(feeds, names)
	if err != nil {
		return nil, err
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	return cfg, nil
}

func (a *app) httpFetcher() *fetch.HTTPFetcher {
	return fetch.NewHTTPFetcher(
		fetch.WithTimeout(a.timeout),
		fetch.WithRetries(a.retries, time.Second),
		fetch.WithLogger(a.logger),
	)
}

// ingest runs a full ingestion into a new catalog.
func (a *app) ingest(ctx context.Context) (*catalog.Catalog, *ingest.Report, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	var fetcher ingest.Fetcher = a.httpFetcher()
	if a.fromDir != "" {
		fetcher = fetch.NewDirFetcher(a.fromDir, cfg.BaseURL)
	}

	opts := []ingest.Option{
		ingest.WithLogger(a.logger),
		ingest.WithConcurrency(a.concurrency),
		ingest.WithFailFast(a.failFast),
	}
	var reg *prometheus.Registry
	if a.metricsFile != "" {
		reg = prometheus.NewRegistry()
		opts = append(opts, ingest.WithMetrics(ingest.NewMetrics(reg)))
	}

	cat := catalog.New(catalog.DefaultRegionTable())
	report, err := ingest.NewDriver(cfg, fetcher, opts...).Run(ctx, cat)
	if reg != nil {
		if werr := prometheus.WriteToTextfile(a.metricsFile, reg); werr != nil {
			a.logger.Error().Err(werr).Str("path", a.metricsFile).Msg("failed to write metrics")
		}
	}
	if err != nil {
		return nil, report, err
	}
	if !report.OK() {
		a.logger.Warn().Int("failures", len(report.Failures)).Msg("some feeds could not be ingested; catalog is partial")
	}
	return cat, report, nil
}
