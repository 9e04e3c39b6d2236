package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftsheet/internal/config"
	"github.com/meltforce/liftsheet/internal/flatten"
	"github.com/meltforce/liftsheet/internal/history"
	"github.com/meltforce/liftsheet/internal/ingest"
	"github.com/meltforce/liftsheet/internal/models"
	"github.com/meltforce/liftsheet/internal/sheet"
)

// Stats describes one export run.
type Stats struct {
	RunID     string
	InputHash string
	Shape     string

	Sessions        int
	Exercises       int
	Sets            int
	Rows            int
	PlaceholderRows int
	Columns         int

	DroppedColumns    []string
	MissingColumns    []string
	UnselectedColumns []string

	// Unchanged is set when the input matches the last successful run's input.
	Unchanged bool
}

// Exporter converts one workout export into CSV and XLSX tables.
type Exporter struct {
	cfg     *config.Config
	log     *slog.Logger
	history *history.Store
	dryRun  bool
	stats   Stats
}

// New creates a new Exporter. hist may be nil to skip run history.
func New(cfg *config.Config, log *slog.Logger, hist *history.Store, dryRun bool) *Exporter {
	return &Exporter{cfg: cfg, log: log, history: hist, dryRun: dryRun}
}

// Run loads, flattens, selects columns and writes both outputs. Either both
// outputs are replaced or neither is.
func (e *Exporter) Run(ctx context.Context) (*Stats, error) {
	started := time.Now()
	e.stats.RunID = uuid.NewString()
	log := e.log.With("run", e.stats.RunID)

	err := e.run(ctx, log)
	if e.history != nil && !e.dryRun {
		e.record(ctx, log, started, err)
	}
	return &e.stats, err
}

func (e *Exporter) run(ctx context.Context, log *slog.Logger) error {
	doc, err := ingest.Load(e.cfg.Input, SchemaFor(e.cfg))
	if err != nil {
		return fmt.Errorf("loading input: %w", err)
	}
	e.stats.Shape = doc.Shape.String()
	log.Info("input loaded", "path", e.cfg.Input, "shape", e.stats.Shape, "sessions", len(doc.Sessions))

	if e.history != nil {
		e.checkUnchanged(ctx, log)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	res := flatten.Flatten(doc.Sessions, OptionsFor(e.cfg))
	e.stats.Sessions = res.Counts.Sessions
	e.stats.Exercises = res.Counts.Exercises
	e.stats.Sets = res.Counts.Sets
	e.stats.Rows = res.Counts.Rows
	e.stats.PlaceholderRows = res.Counts.PlaceholderRows
	e.stats.DroppedColumns = res.Dropped

	sel := flatten.Select(res.Rows, e.cfg.Columns)
	e.stats.Columns = len(sel.Table.Columns)
	e.stats.MissingColumns = sel.Missing
	e.stats.UnselectedColumns = sel.Unselected

	if len(res.Dropped) > 0 {
		log.Warn("nested fields without a scalar form were dropped", "columns", res.Dropped)
	}
	if len(sel.Missing) > 0 {
		log.Warn("configured columns not found in any row", "columns", sel.Missing)
	}
	if len(sel.Unselected) > 0 {
		log.Debug("discovered columns not selected", "columns", sel.Unselected)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if e.dryRun {
		log.Info("dry run: outputs not written", "rows", e.stats.Rows, "columns", e.stats.Columns)
		return nil
	}

	if err := e.write(sel.Table); err != nil {
		return err
	}
	log.Info("outputs written", "csv", e.cfg.Output.CSV, "xlsx", e.cfg.Output.XLSX,
		"rows", e.stats.Rows, "columns", e.stats.Columns)
	return nil
}

func (e *Exporter) write(t *models.Table) error {
	return sheet.WriteAll(
		sheet.Output{
			Path:  e.cfg.Output.CSV,
			Stage: "write-csv",
			Write: func(w io.Writer) error { return sheet.WriteCSV(w, t) },
		},
		sheet.Output{
			Path:  e.cfg.Output.XLSX,
			Stage: "write-xlsx",
			Write: func(w io.Writer) error { return sheet.WriteXLSX(w, t, e.cfg.Output.Sheet) },
		},
	)
}

// checkUnchanged compares the input hash with the last successful run.
// History problems are logged, never fatal.
func (e *Exporter) checkUnchanged(ctx context.Context, log *slog.Logger) {
	hash, err := history.HashFile(e.cfg.Input)
	if err != nil {
		log.Warn("hashing input failed", "path", e.cfg.Input, "error", err)
		return
	}
	e.stats.InputHash = hash

	last, err := e.history.LastOK(ctx, e.cfg.Input)
	if err != nil {
		log.Warn("reading history failed", "error", err)
		return
	}
	if last != nil && last.InputHash == hash {
		e.stats.Unchanged = true
		log.Info("input unchanged since last export", "last_run", last.ID, "last_finished", last.FinishedAt)
	}
}

func (e *Exporter) record(ctx context.Context, log *slog.Logger, started time.Time, runErr error) {
	r := history.Run{
		ID:         e.stats.RunID,
		InputPath:  e.cfg.Input,
		InputHash:  e.stats.InputHash,
		Rows:       e.stats.Rows,
		Columns:    e.stats.Columns,
		CSVPath:    e.cfg.Output.CSV,
		XLSXPath:   e.cfg.Output.XLSX,
		Status:     history.StatusOK,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		r.Status = history.StatusFailed
		r.Error = runErr.Error()
	}
	// Record even when the run's context was cancelled.
	if err := e.history.Record(context.WithoutCancel(ctx), r); err != nil {
		log.Warn("recording run history failed", "error", err)
	}
}
