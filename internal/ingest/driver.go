// Package ingest runs the RDS pricing ingestion: it fetches every feed the
// feed tables describe, parses it, and merges the observations into a
// catalog.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/rds-pricing-catalog/internal/catalog"
	"github.com/rshade/rds-pricing-catalog/internal/feed"
)

// DefaultConcurrency is the number of feeds fetched in parallel.
const DefaultConcurrency = 4

// Fetcher retrieves the document served at a feed URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Driver runs ingestion for one feed configuration.
type Driver struct {
	cfg         *feed.Config
	fetcher     Fetcher
	parser      *feed.Parser
	logger      zerolog.Logger
	metrics     *Metrics
	failFast    bool
	concurrency int
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger warnings and failures are written to.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithMetrics records run activity on m.
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithFailFast aborts the run on the first feed that cannot be fetched or
// decoded. By default such feeds are recorded in Report.Failures and the run
// continues.
func WithFailFast(failFast bool) Option {
	return func(d *Driver) { d.failFast = failFast }
}

// WithConcurrency bounds parallel fetches. Values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(d *Driver) { d.concurrency = max(n, 1) }
}

// NewDriver returns a driver for cfg. cfg must come from feed.LoadConfig or
// feed.DefaultConfig.
func NewDriver(cfg *feed.Config, fetcher Fetcher, opts ...Option) *Driver {
	d := &Driver{
		cfg:         cfg,
		fetcher:     fetcher,
		parser:      feed.NewParser(cfg),
		logger:      zerolog.Nop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type fetchResult struct {
	body []byte
	err  error
}

// Run ingests every enumerated feed into cat.
//
// Feeds are fetched concurrently but merged strictly in enumeration order,
// so when two feeds price the same key the later feed wins, as in a
// sequential run. The returned error is non-nil only when ctx is done or a
// feed fails under WithFailFast; the report is returned in both cases.
func (d *Driver) Run(ctx context.Context, cat *catalog.Catalog) (*Report, error) {
	sources := feed.Enumerate(d.cfg)
	report := newReport(len(sources))
	logger := d.logger.With().Str("run_id", report.RunID.String()).Logger()
	defer func() { report.Finished = time.Now().UTC() }()

	logger.Info().Int("sources", len(sources)).Int("concurrency", d.concurrency).Msg("starting ingestion")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]chan fetchResult, len(sources))
	for i := range results {
		results[i] = make(chan fetchResult, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for i, src := range sources {
			if err := gctx.Err(); err != nil {
				results[i] <- fetchResult{err: err}
				continue
			}
			i, src := i, src
			g.Go(func() error {
				body, err := d.fetcher.Fetch(gctx, src.URL)
				results[i] <- fetchResult{body: body, err: err}
				return nil
			})
		}
	}()
	defer func() {
		cancel()
		<-launched
		_ = g.Wait()
	}()

	for i, src := range sources {
		var res fetchResult
		select {
		case res = <-results[i]:
		case <-ctx.Done():
			return report, fmt.Errorf("ingestion canceled: %w", ctx.Err())
		}
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("ingestion canceled: %w", err)
		}
		if err := d.merge(logger, cat, report, src, res); err != nil {
			return report, err
		}
	}

	logger.Info().
		Int("fetched", report.Fetched).
		Int("observations", report.Observations).
		Int("writes", report.Writes).
		Int("warnings", len(report.Warnings)).
		Int("failures", len(report.Failures)).
		Msg("ingestion finished")
	return report, nil
}

func (d *Driver) merge(logger zerolog.Logger, cat *catalog.Catalog, report *Report, src feed.Source, res fetchResult) error {
	shape := src.Shape.String()
	logger = logger.With().Str("url", src.URL).Str("shape", shape).Logger()

	if res.err != nil {
		return d.fail(logger, report, src, res.err)
	}
	parsed, err := d.parser.Parse(src.Shape, res.body)
	if err != nil {
		return d.fail(logger, report, src, err)
	}
	report.Fetched++
	d.metrics.feed(shape, "ok")
	d.metrics.observations(shape, len(parsed.Observations))

	for _, u := range parsed.Unknown {
		d.warn(logger, report, Warning{
			Kind:    WarningUnknownType,
			URL:     src.URL,
			Region:  u.Region,
			Label:   u.Label(),
			Message: "instance label not in instance-name table",
		})
	}
	for _, m := range parsed.Malformed {
		d.warn(logger, report, Warning{
			Kind:    WarningMalformedItem,
			URL:     src.URL,
			Region:  m.Region,
			Label:   m.Label,
			Message: m.Reason,
		})
	}

	// Items of an unknown region are skipped with one warning per region.
	var missing []unknownRegion
	skipped := make(map[string]int)
	for _, obs := range parsed.Observations {
		report.Observations++
		if i, ok := skipped[obs.Region]; ok {
			missing[i].items++
			continue
		}
		region, err := cat.FindOrCreateRegion(obs.Region)
		if errors.Is(err, catalog.ErrRegionNotFound) {
			skipped[obs.Region] = len(missing)
			missing = append(missing, unknownRegion{region: obs.Region, err: err, items: 1})
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to resolve region %q: %w", obs.Region, err)
		}

		it := region.AddOrUpdateInstanceType(obs.APIName, obs.DisplayName)
		for _, engine := range src.Meta.Engines {
			it.UpdatePricing(priceKey(src, obs, engine), obs.Price)
			report.Writes++
			d.metrics.write()
		}
	}

	for _, m := range missing {
		d.warn(logger, report, Warning{
			Kind:    WarningRegionNotFound,
			URL:     src.URL,
			Region:  m.region,
			Message: fmt.Sprintf("%v; skipped %d items", m.err, m.items),
		})
	}
	return nil
}

type unknownRegion struct {
	region string
	err    error
	items  int
}

// priceKey combines what the URL says about a feed with what the document
// says about an item.
func priceKey(src feed.Source, obs feed.Observation, engine catalog.Engine) catalog.PriceKey {
	meta := src.Meta
	switch src.Shape {
	case feed.ShapeReservedLegacy:
		topology := meta.Topology
		if obs.HasTopology {
			topology = obs.Topology
		}
		return catalog.PriceKey{
			Engine:      engine,
			Reservation: meta.Utilization,
			Term:        obs.Term,
			Topology:    topology,
			License:     meta.License,
		}
	case feed.ShapeReservedTerm:
		return catalog.PriceKey{
			Engine:      engine,
			Reservation: obs.Reservation,
			Term:        obs.Term,
			Topology:    meta.Topology,
			License:     meta.License,
		}
	default:
		return catalog.OnDemandKey(engine, meta.Topology, meta.License)
	}
}

func (d *Driver) warn(logger zerolog.Logger, report *Report, w Warning) {
	report.Warnings = append(report.Warnings, w)
	d.metrics.warning(w.Kind)
	logger.Warn().
		Str("kind", string(w.Kind)).
		Str("region", w.Region).
		Str("label", w.Label).
		Msg(w.Message)
}

func (d *Driver) fail(logger zerolog.Logger, report *Report, src feed.Source, err error) error {
	report.Failures = append(report.Failures, Failure{
		URL:     src.URL,
		Shape:   src.Shape.String(),
		Err:     err,
		Message: err.Error(),
	})
	d.metrics.feed(src.Shape.String(), "failed")

	if d.failFast {
		logger.Error().Err(err).Msg("feed failed, aborting run")
		return fmt.Errorf("ingest %s: %w", src.URL, err)
	}
	logger.Error().Err(err).Msg("feed failed, continuing")
	return nil
}
