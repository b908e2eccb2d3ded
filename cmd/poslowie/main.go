package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-resty/resty/v2"
	"github.com/japaniel/poslowie/pkg/config"
	"github.com/japaniel/poslowie/pkg/db"
	"github.com/japaniel/poslowie/pkg/fetch"
	"github.com/japaniel/poslowie/pkg/ingest"
	"github.com/japaniel/poslowie/pkg/scrape"
	"github.com/japaniel/poslowie/pkg/wikidata"
	"github.com/spf13/cobra"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var terms map[string]string

	cmd := &cobra.Command{
		Use:           "poslowie",
		Short:         "poslowie scrapes members of the Polish Sejm from Wikipedia into SQLite.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("term") {
				if cfg.Terms, err = config.ParseTerms(terms); err != nil {
					return err
				}
			}

			logger, closeLog := newLogger(cfg, cmd.ErrOrStderr())
			defer closeLog()

			return run(cmd.Context(), cfg, cmd.OutOrStdout(), logger)
		},
	}

	flags := cmd.Flags()
	flags.String("db", "poslowie.db", "Path to SQLite database")
	flags.String("cache-dir", ".cache", "Directory for downloaded pages (never refreshed)")
	flags.String("api-url", wikidata.DefaultEndpoint, "MediaWiki API used to resolve Wikidata ids")
	flags.String("user-agent", "poslowie/0.1 (Sejm members scraper)", "User-Agent sent with every request")
	flags.Int("batch-size", wikidata.DefaultBatchSize, "Titles per Wikidata lookup request")
	flags.Bool("keep-going", false, "Continue with the next term when one fails")
	flags.String("log-file", "", "Also write logs to this file (rotated)")
	flags.BoolP("verbose", "v", false, "Log every extracted member")
	for _, name := range []string{"db", "cache-dir", "api-url", "user-agent", "batch-size", "keep-going", "log-file", "verbose"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	flags.StringToStringVar(&terms, "term", nil, "Scrape only these terms, as ID=URL (repeatable)")

	return cmd
}

func run(ctx context.Context, cfg config.Config, out io.Writer, logger *slog.Logger) error {
	conn, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()
	logger.Info("database initialized", "path", cfg.DB)

	client := resty.New().SetHeader("User-Agent", cfg.UserAgent)

	fetcher := fetch.NewFetcher(client, cfg.CacheDir)
	fetcher.Logger = logger

	resolver := wikidata.NewResolver(client, cfg.APIURL)
	resolver.BatchSize = cfg.BatchSize
	resolver.Logger = logger

	ingester := ingest.NewIngester(conn)
	ingester.Logger = logger

	s := &scrape.Scraper{
		Fetcher:   fetcher,
		Resolver:  resolver,
		Store:     ingester,
		Out:       out,
		KeepGoing: cfg.KeepGoing,
		Logger:    logger,
	}
	return s.Run(ctx, cfg.Terms)
}
