// Command clean scrapes public-records disclosure metadata for the
// registered agencies.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	clean "github.com/biglocalnews/clean-go"
	_ "github.com/biglocalnews/clean-go/ca"
	"github.com/biglocalnews/clean-go/config"
	"github.com/biglocalnews/clean-go/export"
	"github.com/biglocalnews/clean-go/ledger"
	"github.com/biglocalnews/clean-go/scrape"
)

func main() {
	app := &cli.App{
		Name:  "clean",
		Usage: "scrape metadata on public-records disclosures (police videos, documents, audio)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "override the page cache directory",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "override the export directory",
			},
		},
		Before: func(c *cli.Context) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			return nil
		},
		Commands: []*cli.Command{
			listCommand(),
			scrapeMetaCommand(),
			runsCommand(),
			exportCSVCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

// loadConfig resolves directories from the config file plus any CLI
// overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if dir := c.String("cache-dir"); dir != "" {
		cfg.CacheDir = dir
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list the registered agencies",
		Action: func(c *cli.Context) error {
			for _, entry := range clean.Agencies() {
				fmt.Printf("%-30s %s\n", entry.Slug, entry.Name)
			}
			return nil
		},
	}
}

func scrapeMetaCommand() *cli.Command {
	return &cli.Command{
		Name:      "scrape-meta",
		Usage:     "scrape asset metadata for one agency and write its JSON export",
		ArgsUsage: "<agency-slug>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "throttle",
				Usage: "seconds to wait between page downloads (default from config)",
				Value: -1,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one agency slug (see: clean list)", 1)
			}
			slug := c.Args().First()

			entry, ok := clean.Lookup(slug)
			if !ok {
				return cli.Exit(fmt.Sprintf("unknown agency %q (see: clean list)", slug), 1)
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			throttle := cfg.Throttle()
			if secs := c.Int("throttle"); secs >= 0 {
				throttle = time.Duration(secs) * time.Second
			}

			site, err := entry.Factory(cfg.CacheDir, cfg.DataDir)
			if err != nil {
				return err
			}

			store, err := ledger.NewStore(cfg.LedgerPath)
			if err != nil {
				return err
			}
			defer store.Close()
			if rec, ok := site.(interface{ SetRecorder(scrape.RunRecorder) }); ok {
				rec.SetRecorder(store)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out, err := site.ScrapeMeta(ctx, throttle)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:      "runs",
		Usage:     "show recorded scrape runs, most recent first",
		ArgsUsage: "[agency-slug]",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			store, err := ledger.NewStore(cfg.LedgerPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(c.Args().First())
			if err != nil {
				return err
			}
			for _, run := range runs {
				fmt.Printf("%s  %-30s pages=%-4d assets=%-4d %s\n",
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.Slug, run.PagesFetched, run.AssetsFound, run.ExportPath)
			}
			return nil
		},
	}
}

func exportCSVCommand() *cli.Command {
	return &cli.Command{
		Name:      "export-csv",
		Usage:     "rewrite an agency's JSON export as CSV",
		ArgsUsage: "<agency-slug>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one agency slug", 1)
			}
			slug := c.Args().First()

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			jsonPath := filepath.Join(cfg.DataDir, slug+".json")
			data, err := os.ReadFile(jsonPath)
			if err != nil {
				return fmt.Errorf("no export for %s (run scrape-meta first): %w", slug, err)
			}

			var records []clean.MetadataRecord
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("failed to parse %s: %w", jsonPath, err)
			}

			csvPath := filepath.Join(cfg.DataDir, slug+".csv")
			if err := export.WriteCSV(csvPath, records); err != nil {
				return err
			}
			fmt.Println(csvPath)
			return nil
		},
	}
}
