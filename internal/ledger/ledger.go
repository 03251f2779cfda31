// Package ledger keeps the report of every pipeline run in Postgres so run
// status survives restarts and is available to non-durable runs too.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// Ledger records pipeline run reports
type Ledger struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// Open connects to databaseURL and prepares the ledger table
func Open(ctx context.Context, databaseURL string, logger *zap.SugaredLogger) (*Ledger, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	l, err := New(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// New creates a ledger on db, creating the table if needed
func New(ctx context.Context, db *sql.DB, logger *zap.SugaredLogger) (*Ledger, error) {
	l := &Ledger{db: db, logger: logging.OrNop(logger)}

	// Create table if not exists
	if err := l.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger table: %w", err)
	}

	return l, nil
}

// ensureTable creates the pipeline_runs table if it doesn't exist
func (l *Ledger) ensureTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id TEXT PRIMARY KEY,
			job TEXT NOT NULL,
			content_id TEXT,
			success BOOLEAN NOT NULL,
			stage TEXT NOT NULL,
			halt TEXT,
			report JSONB NOT NULL,
			first_seen_at TIMESTAMPTZ DEFAULT NOW(),
			last_seen_at TIMESTAMPTZ DEFAULT NOW(),
			seen_count INTEGER DEFAULT 1
		)
	`

	if _, err := l.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create pipeline_runs table: %w", err)
	}

	l.logger.Infof("pipeline_runs table ready")
	return nil
}

// Record upserts the report of a run. A run recorded again (a durable
// workflow recovered after a crash) replaces the report and bumps seen_count.
func (l *Ledger) Record(ctx context.Context, report pipeline.RunReport) error {
	if report.RunID == "" {
		return errors.New("run report has no run ID")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	query := `
		INSERT INTO pipeline_runs (run_id, job, content_id, success, stage, halt, report, first_seen_at, last_seen_at, seen_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW(), 1)
		ON CONFLICT (run_id) DO UPDATE
		SET last_seen_at = NOW(),
		    seen_count = pipeline_runs.seen_count + 1,
		    success = EXCLUDED.success,
		    stage = EXCLUDED.stage,
		    halt = EXCLUDED.halt,
		    report = EXCLUDED.report
		RETURNING seen_count
	`

	var seenCount int
	err = l.db.QueryRowContext(ctx, query,
		report.RunID, report.Job, report.ContentID, report.Success, report.Stage, report.Halt, string(data),
	).Scan(&seenCount)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if seenCount > 1 {
		l.logger.Infof("[%s] Run recorded again (seen %d times)", report.RunID, seenCount)
	}
	return nil
}

// Get returns the recorded report of runID, or nil when the run is unknown
func (l *Ledger) Get(ctx context.Context, runID string) (*pipeline.RunReport, error) {
	query := `SELECT report FROM pipeline_runs WHERE run_id = $1`

	var data []byte
	err := l.db.QueryRowContext(ctx, query, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report pipeline.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode run report: %w", err)
	}
	return &report, nil
}

// ListByContent returns the most recent reports for a content ID, newest first
func (l *Ledger) ListByContent(ctx context.Context, contentID string, limit int) ([]pipeline.RunReport, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT report FROM pipeline_runs
		WHERE content_id = $1
		ORDER BY last_seen_at DESC
		LIMIT $2
	`

	rows, err := l.db.QueryContext(ctx, query, contentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var reports []pipeline.RunReport
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		var report pipeline.RunReport
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("failed to decode run report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// Close closes the underlying database
func (l *Ledger) Close() error {
	return l.db.Close()
}
