package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Status values recorded for a run.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one recorded export.
type Run struct {
	ID         string
	InputPath  string
	InputHash  string
	Rows       int
	Columns    int
	CSVPath    string
	XLSXPath   string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store records past exports in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at dir/history.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		input_path  TEXT NOT NULL,
		input_hash  TEXT NOT NULL,
		row_count   INTEGER NOT NULL,
		col_count   INTEGER NOT NULL,
		csv_path    TEXT NOT NULL,
		xlsx_path   TEXT NOT NULL,
		status      TEXT NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		started_at  INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}

	return &Store{db: db}, nil
}

// Record stores a finished run.
func (s *Store) Record(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, input_path, input_hash, row_count, col_count,
		 csv_path, xlsx_path, status, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.InputPath, r.InputHash, r.Rows, r.Columns,
		r.CSVPath, r.XLSXPath, r.Status, r.Error, r.StartedAt.UnixMilli(), r.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// LastOK returns the most recent successful run for an input path, or nil.
func (s *Store) LastOK(ctx context.Context, inputPath string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_path, input_hash, row_count, col_count, csv_path, xlsx_path,
		 status, error, started_at, finished_at
		 FROM runs WHERE input_path = ? AND status = ?
		 ORDER BY finished_at DESC, rowid DESC LIMIT 1`,
		inputPath, StatusOK)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last run: %w", err)
	}
	return r, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_path, input_hash, row_count, col_count, csv_path, xlsx_path,
		 status, error, started_at, finished_at
		 FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

// Close closes the history database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var started, finished int64
	if err := sc.Scan(&r.ID, &r.InputPath, &r.InputHash, &r.Rows, &r.Columns,
		&r.CSVPath, &r.XLSXPath, &r.Status, &r.Error, &started, &finished); err != nil {
		return nil, err
	}
	r.StartedAt = time.UnixMilli(started).UTC()
	r.FinishedAt = time.UnixMilli(finished).UTC()
	return &r, nil
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
