package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lexcue/cuescan/pkg/cuescan/census"
	"github.com/lexcue/cuescan/pkg/cuescan/internalerr"
	"github.com/lexcue/cuescan/pkg/cuescan/report"
	"github.com/lexcue/cuescan/pkg/cuescan/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and
// initializes the census schema.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	input TEXT NOT NULL,
	started_at TEXT NOT NULL,
	rows_total INTEGER NOT NULL,
	email_like_rows INTEGER NOT NULL,
	unique_emails INTEGER NOT NULL,
	estimated_duplicates INTEGER NOT NULL,
	duplicate_rate REAL NOT NULL,
	audit_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_years (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	year TEXT NOT NULL,
	email_like_rows INTEGER NOT NULL,
	unique_emails INTEGER NOT NULL,
	estimated_duplicates INTEGER NOT NULL,
	PRIMARY KEY (run_id, year)
);

CREATE TABLE IF NOT EXISTS run_clusters (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	occurrence_count INTEGER NOT NULL,
	from_domain TEXT NOT NULL,
	subject TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	earliest_year TEXT NOT NULL,
	examples_json TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores a finished census pass in one transaction.
func (s *sqliteStore) SaveRun(ctx context.Context, meta report.RunMeta, snap census.Snapshot) error {
	if meta.ID == "" {
		return internalerr.ErrInvalidInput
	}

	auditJSON, err := json.Marshal(snap.Audit)
	if err != nil {
		return fmt.Errorf("marshal audit: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, input, started_at, rows_total, email_like_rows, unique_emails,
			 estimated_duplicates, duplicate_rate, audit_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Input, meta.StartedAt.UTC().Format(time.RFC3339),
		snap.TotalRows, snap.EmailLikeRows, snap.UniqueEmails,
		snap.EstimatedDuplicates, snap.DuplicateRatePercent, string(auditJSON))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, yc := range snap.YearTable() {
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO run_years
				(run_id, year, email_like_rows, unique_emails, estimated_duplicates)
			VALUES (?, ?, ?, ?, ?)`,
			meta.ID, yc.Year, yc.EmailLikeRows, yc.UniqueEmails, yc.EstimatedDuplicates)
		if err != nil {
			return fmt.Errorf("insert year %s: %w", yc.Year, err)
		}
	}

	for i, cluster := range snap.TopClusters {
		examplesJSON, err := json.Marshal(cluster.Examples)
		if err != nil {
			return fmt.Errorf("marshal cluster examples: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO run_clusters
				(run_id, position, occurrence_count, from_domain, subject,
				 content_hash, earliest_year, examples_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			meta.ID, i, cluster.Count, cluster.Signature.FromDomain,
			cluster.Signature.Subject, cluster.Signature.ContentHash,
			cluster.EarliestYear, string(examplesJSON))
		if err != nil {
			return fmt.Errorf("insert cluster %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetRun returns a stored run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, input, started_at, rows_total, email_like_rows, unique_emails,
		       estimated_duplicates, duplicate_rate, audit_json
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, internalerr.ErrNotFound
	}
	return run, err
}

// ListRuns returns stored runs, newest first (ULIDs sort by creation time).
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, input, started_at, rows_total, email_like_rows, unique_emails,
		       estimated_duplicates, duplicate_rate, audit_json
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// YearCounts returns a run's per-year census table.
func (s *sqliteStore) YearCounts(ctx context.Context, runID string) ([]census.YearCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, email_like_rows, unique_emails, estimated_duplicates
		FROM run_years WHERE run_id = ? ORDER BY year`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []census.YearCount
	for rows.Next() {
		var yc census.YearCount
		if err := rows.Scan(&yc.Year, &yc.EmailLikeRows, &yc.UniqueEmails, &yc.EstimatedDuplicates); err != nil {
			return nil, err
		}
		counts = append(counts, yc)
	}
	return counts, rows.Err()
}

// TopClusters returns up to k of a run's duplicate clusters, largest first.
func (s *sqliteStore) TopClusters(ctx context.Context, runID string, k int) ([]census.Cluster, error) {
	if k <= 0 {
		k = census.DefaultTopClusters
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurrence_count, from_domain, subject, content_hash, earliest_year, examples_json
		FROM run_clusters WHERE run_id = ? ORDER BY position LIMIT ?`, runID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clusters []census.Cluster
	for rows.Next() {
		var c census.Cluster
		var examplesJSON string
		err := rows.Scan(&c.Count, &c.Signature.FromDomain, &c.Signature.Subject,
			&c.Signature.ContentHash, &c.EarliestYear, &examplesJSON)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(examplesJSON), &c.Examples); err != nil {
			return nil, fmt.Errorf("unmarshal cluster examples: %w", err)
		}
		clusters = append(clusters, c)
	}
	return clusters, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var run store.Run
	var startedAt, auditJSON string
	err := row.Scan(&run.Meta.ID, &run.Meta.Input, &startedAt, &run.TotalRows,
		&run.EmailLikeRows, &run.UniqueEmails, &run.EstimatedDuplicates,
		&run.DuplicateRatePercent, &auditJSON)
	if err != nil {
		return store.Run{}, err
	}
	if ts, err := time.Parse(time.RFC3339, startedAt); err == nil {
		run.Meta.StartedAt = ts
	}
	if err := json.Unmarshal([]byte(auditJSON), &run.Audit); err != nil {
		return store.Run{}, fmt.Errorf("unmarshal audit: %w", err)
	}
	return run, nil
}
