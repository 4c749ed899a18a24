package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/rds-pricing-catalog/internal/catalog"
	"github.com/rshade/rds-pricing-catalog/internal/feed"
	"github.com/rshade/rds-pricing-catalog/internal/fetch"
)

func newURLsCmd(a *app) *cobra.Command {
	var shape string
	cmd := &cobra.Command{
		Use:   "urls",
		Short: "List every feed URL the ingestion fetches",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, src := range feed.Enumerate(cfg) {
				if shape != "" && src.Shape.String() != shape {
					continue
				}
				engines := make([]string, len(src.Meta.Engines))
				for i, e := range src.Meta.Engines {
					engines[i] = e.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					src.Shape, strings.Join(engines, ","), src.Meta.Topology, src.Meta.License, src.URL)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&shape, "shape", "", "only list feeds of this shape (on_demand, reserved_legacy, reserved_term)")
	return cmd
}

func newDownloadCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Record every feed document under a directory",
		Long: `Record every feed document under a directory, laid out by URL path, for
later use with --from-dir.

Fail-fast: if any feed cannot be fetched the command stops and exits non-zero.
Each file is written through a temporary file, so a failed run never leaves
a truncated document behind.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			sources := feed.Enumerate(cfg)
			fetcher := a.httpFetcher()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(a.concurrency)
			for _, src := range sources {
				src := src
				g.Go(func() error {
					path, err := fetch.RecordPath(dir, cfg.BaseURL, src.URL)
					if err != nil {
						return err
					}
					data, err := fetcher.Fetch(ctx, src.URL)
					if err != nil {
						return err
					}
					if err := fetch.WriteFileAtomic(path, data); err != nil {
						return fmt.Errorf("failed to write %s: %w", path, err)
					}
					a.logger.Debug().Str("url", src.URL).Str("path", path).Int("bytes", len(data)).Msg("recorded feed")
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			a.logger.Info().Int("feeds", len(sources)).Str("dir", dir).Msg("feeds recorded")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to record feeds under")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func newIngestCmd(a *app) *cobra.Command {
	var output, reportPath string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch every feed and build the catalog",
		Long: `Fetch every feed and build the catalog.

Feeds that cannot be fetched are logged and skipped unless --fail-fast is
set. Use --output - to write the catalog JSON to standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, report, err := a.ingest(cmd.Context())
			if report != nil && reportPath != "" {
				if werr := a.writeJSON(reportPath, report); werr != nil {
					return werr
				}
			}
			if err != nil {
				return err
			}
			if output == "" {
				return nil
			}
			return a.writeJSON(output, cat.Snapshot())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the catalog as JSON to this file (- for stdout)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write the run report as JSON to this file (- for stdout)")
	return cmd
}

func newPriceCmd(a *app) *cobra.Command {
	var keyFilter string
	cmd := &cobra.Command{
		Use:   "price <region> <instance-type>",
		Short: "Ingest the feeds and print the prices of one instance type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var want *catalog.PriceKey
			if keyFilter != "" {
				k, err := catalog.ParsePriceKey(keyFilter)
				if err != nil {
					return fmt.Errorf("invalid --key: %w", err)
				}
				want = &k
			}

			cat, _, err := a.ingest(cmd.Context())
			if err != nil {
				return err
			}
			it, err := cat.GetInstanceType(args[0], args[1])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "KEY\tUPFRONT\tHOURLY\tMONTHLY\tEFFECTIVE_HOURLY\n")
			found := false
			for _, pk := range it.Prices() {
				if want != nil && pk.Key != *want {
					continue
				}
				found = true
				p := pk.Price
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					pk.Key, p.Upfront, p.Hourly, p.Monthly, p.EffectiveHourly)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !found && want != nil {
				return fmt.Errorf("%s %s has no price under %s", args[0], args[1], want)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&keyFilter, "key", "", "only print this price key (engine/reservation/term/topology/license)")
	return cmd
}

func (a *app) writeJSON(path string, v any) error {
	var w io.Writer = a.stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
