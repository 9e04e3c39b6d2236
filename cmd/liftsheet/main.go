package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/meltforce/liftsheet/internal/config"
	"github.com/meltforce/liftsheet/internal/exporter"
	"github.com/meltforce/liftsheet/internal/history"
	"github.com/meltforce/liftsheet/internal/ingest"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (default: built-in Boostcamp profile)")
	inputPath := flag.String("input", "", "path to the workout JSON export (overrides config)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing outputs")
	listRuns := flag.Int("history", 0, "print the N most recent runs and exit (requires history.dir)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("loading .env failed", "error", err)
	}

	cfg, err := config.Load(*configPath, config.WithInput(*inputPath))
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var hist *history.Store
	if cfg.History.Dir != "" {
		hist, err = history.Open(cfg.History.Dir)
		if err != nil {
			log.Error("failed to open history", "dir", cfg.History.Dir, "error", err)
			os.Exit(1)
		}
		defer hist.Close()
	}

	ctx := context.Background()

	if *listRuns > 0 {
		if hist == nil {
			log.Error("history.dir is not configured")
			os.Exit(1)
		}
		if err := printRuns(ctx, hist, *listRuns); err != nil {
			log.Error("failed to read history", "error", err)
			os.Exit(1)
		}
		return
	}

	log.Info("liftsheet starting", "version", Version, "profile", cfg.Profile, "input", cfg.Input)
	if *dryRun {
		log.Info("DRY RUN mode: no output files will be written")
	}

	exp := exporter.New(cfg, log, hist, *dryRun)
	stats, err := exp.Run(ctx)
	if err != nil {
		log.Error("export failed", append([]any{"error", err}, failureAttrs(err)...)...)
		printStats(log, stats)
		if hist != nil {
			hist.Close()
		}
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("export complete")
}

// failureAttrs names the failing stage and path for the operator.
func failureAttrs(err error) []any {
	var ioErr *ingest.IOError
	var parseErr *ingest.ParseError
	var schemaErr *ingest.SchemaError
	switch {
	case errors.As(err, &ioErr):
		return []any{"kind", "io", "stage", ioErr.Stage, "path", ioErr.Path}
	case errors.As(err, &parseErr):
		return []any{"kind", "parse", "stage", "parse", "path", parseErr.Path}
	case errors.As(err, &schemaErr):
		return []any{"kind", "schema", "stage", "schema", "level", schemaErr.Level}
	default:
		return nil
	}
}

func printStats(log *slog.Logger, stats *exporter.Stats) {
	log.Info("export stats",
		"run", stats.RunID,
		"shape", stats.Shape,
		"sessions", stats.Sessions,
		"exercises", stats.Exercises,
		"sets", stats.Sets,
		"rows", stats.Rows,
		"placeholder_rows", stats.PlaceholderRows,
		"columns", stats.Columns,
		"unchanged_input", stats.Unchanged,
	)
}

func printRuns(ctx context.Context, hist *history.Store, limit int) error {
	runs, err := hist.Recent(ctx, limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %s  %-6s  rows=%d cols=%d  %s",
			r.FinishedAt.Local().Format("2006-01-02 15:04:05"), r.ID, r.Status, r.Rows, r.Columns, r.InputPath)
		if r.Error != "" {
			line += "  error: " + r.Error
		}
		fmt.Println(line)
	}
	return nil
}
