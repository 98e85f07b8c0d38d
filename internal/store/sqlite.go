// Package store persists batch summaries to SQLite so separate runs can be
// compared.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ppiankov/reviewinsights/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS business_summaries (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id            TEXT NOT NULL,
	position          INTEGER NOT NULL,
	business_id       TEXT NOT NULL,
	business_name     TEXT DEFAULT '',
	total_reviews     INTEGER NOT NULL,
	avg_rating        REAL NOT NULL,
	top_issue_1       TEXT DEFAULT '',
	top_issue_1_count INTEGER DEFAULT 0,
	top_issue_2       TEXT DEFAULT '',
	top_issue_2_count INTEGER DEFAULT 0,
	top_issue_3       TEXT DEFAULT '',
	top_issue_3_count INTEGER DEFAULT 0,
	created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_bs_run ON business_summaries(run_id);
CREATE INDEX IF NOT EXISTS idx_bs_business ON business_summaries(business_id);
`

// RunInfo describes one stored batch run
type RunInfo struct {
	RunID      string
	Businesses int
	CreatedAt  time.Time
}

// SQLiteStore writes batch rows to the business_summaries table
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NewRunID returns a sortable identifier for a batch run started at t
func NewRunID(t time.Time) string {
	return t.UTC().Format("20060102T150405.000Z")
}

// SaveBatch stores rows under runID in one transaction and returns the
// number inserted
func (s *SQLiteStore) SaveBatch(ctx context.Context, runID string, rows []model.BatchRow) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO business_summaries (run_id, position, business_id, business_name, total_reviews, avg_rating,
			top_issue_1, top_issue_1_count, top_issue_2, top_issue_2_count, top_issue_3, top_issue_3_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for i, row := range rows {
		_, err := stmt.ExecContext(ctx,
			runID, i, row.BusinessID, row.BusinessName, row.TotalReviews, row.AverageRating,
			row.TopIssues[0].Label, row.TopIssues[0].Count,
			row.TopIssues[1].Label, row.TopIssues[1].Count,
			row.TopIssues[2].Label, row.TopIssues[2].Count,
		)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", row.BusinessID, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListRun returns the rows of one run in their original order
func (s *SQLiteStore) ListRun(ctx context.Context, runID string) ([]model.BatchRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT business_id, business_name, total_reviews, avg_rating,
			top_issue_1, top_issue_1_count, top_issue_2, top_issue_2_count, top_issue_3, top_issue_3_count
		 FROM business_summaries WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.BatchRow
	for rows.Next() {
		var r model.BatchRow
		if err := rows.Scan(
			&r.BusinessID, &r.BusinessName, &r.TotalReviews, &r.AverageRating,
			&r.TopIssues[0].Label, &r.TopIssues[0].Count,
			&r.TopIssues[1].Label, &r.TopIssues[1].Count,
			&r.TopIssues[2].Label, &r.TopIssues[2].Count,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs lists stored runs, newest first
func (s *SQLiteStore) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, COUNT(*), MIN(created_at) FROM business_summaries
		 GROUP BY run_id ORDER BY run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunInfo
	for rows.Next() {
		var info RunInfo
		var created string
		if err := rows.Scan(&info.RunID, &info.Businesses, &created); err != nil {
			return nil, err
		}
		info.CreatedAt, _ = time.Parse(time.DateTime, created)
		out = append(out, info)
	}
	return out, rows.Err()
}
