// Package store keeps posterior samples from sampler runs in a SQLite file so
// they can be summarized or exported later.
package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  INTEGER NOT NULL,
	dataset     TEXT    NOT NULL,
	n           INTEGER NOT NULL,
	nu          REAL    NOT NULL,
	burn_in     INTEGER NOT NULL,
	sample_size INTEGER NOT NULL,
	seed        INTEGER NOT NULL,
	source      TEXT    NOT NULL,
	workers     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS samples (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx    INTEGER NOT NULL,
	mu     REAL    NOT NULL,
	sigma2 REAL    NOT NULL,
	PRIMARY KEY (run_id, idx)
);
`

// Run describes one recorded sampler run
type Run struct {
	ID         int64
	CreatedAt  time.Time
	Dataset    string
	N          int
	Nu         float64
	BurnIn     int
	SampleSize int
	Seed       int64
	Source     string
	Workers    int
}

// Store persists runs in SQLite
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite store at path
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("Store path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not open sample store %s", path)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "Could not ping sample store %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "Could not create sample store schema")
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun records the run and its samples in a single transaction and
// returns the new run ID. mu and sigma2 must be the same length.
func (s *Store) SaveRun(ctx context.Context, run Run, mu []float64, sigma2 []float64) (int64, error) {
	if len(mu) != len(sigma2) {
		return 0, errors.Errorf("Sample length mismatch: %d mu vs %d sigma2", len(mu), len(sigma2))
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "Could not begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, dataset, n, nu, burn_in, sample_size, seed, source, workers)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.UTC().UnixMilli(), run.Dataset, run.N, run.Nu,
		run.BurnIn, run.SampleSize, run.Seed, run.Source, run.Workers,
	)
	if err != nil {
		return 0, errors.Wrap(err, "Could not insert run")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "Could not read run id")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples (run_id, idx, mu, sigma2) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "Could not prepare sample insert")
	}
	defer stmt.Close()

	for i := range mu {
		if _, err := stmt.ExecContext(ctx, id, i, mu[i], sigma2[i]); err != nil {
			return 0, errors.Wrapf(err, "Could not insert sample %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "Could not commit run")
	}
	return id, nil
}

// LatestRunID returns the ID of the most recently saved run
func (s *Store) LatestRunID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, errors.New("Sample store has no runs")
	}
	if err != nil {
		return 0, errors.Wrap(err, "Could not query latest run")
	}
	return id, nil
}

// LoadRun returns the run metadata and its samples in sweep order
func (s *Store) LoadRun(ctx context.Context, id int64) (*Run, []float64, []float64, error) {
	run := &Run{ID: id}
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, dataset, n, nu, burn_in, sample_size, seed, source, workers
		 FROM runs WHERE id = ?`, id,
	).Scan(&created, &run.Dataset, &run.N, &run.Nu, &run.BurnIn, &run.SampleSize, &run.Seed, &run.Source, &run.Workers)
	if err == sql.ErrNoRows {
		return nil, nil, nil, errors.Errorf("Run %d not found", id)
	}
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "Could not load run %d", id)
	}
	run.CreatedAt = time.UnixMilli(created).UTC()

	rows, err := s.db.QueryContext(ctx, `SELECT mu, sigma2 FROM samples WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "Could not load samples for run %d", id)
	}
	defer rows.Close()

	mu := make([]float64, 0, run.SampleSize)
	sigma2 := make([]float64, 0, run.SampleSize)
	for rows.Next() {
		var m, v float64
		if err := rows.Scan(&m, &v); err != nil {
			return nil, nil, nil, errors.Wrap(err, "Could not scan sample")
		}
		mu = append(mu, m)
		sigma2 = append(sigma2, v)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, errors.Wrap(err, "Sample iteration failed")
	}

	return run, mu, sigma2, nil
}
