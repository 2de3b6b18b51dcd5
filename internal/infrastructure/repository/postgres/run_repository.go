package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/auditscan/auditscan/internal/core/domain"
	"github.com/auditscan/auditscan/internal/core/ports"
)

// RunRepository persists scan-run artifacts: one row per run plus one row
// per classification record, with the verification section stored as JSON.
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS scan_runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	catalog_version TEXT NOT NULL,
	incomplete BOOLEAN NOT NULL DEFAULT FALSE,
	coverage_percentage DOUBLE PRECISION NOT NULL,
	verification JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS scan_records (
	run_id TEXT NOT NULL REFERENCES scan_runs(id) ON DELETE CASCADE,
	document_id TEXT NOT NULL,
	type_id TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	rationale TEXT NOT NULL DEFAULT '',
	evidence JSONB NOT NULL DEFAULT '[]'::jsonb,
	validation_notes JSONB NOT NULL DEFAULT '[]'::jsonb,
	error_message TEXT,
	from_cache BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (run_id, document_id)
);

CREATE INDEX IF NOT EXISTS idx_scan_runs_started_at ON scan_runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_scan_records_type ON scan_records(type_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *RunRepository) SaveRun(ctx context.Context, bundle *domain.ReportBundle) error {
	verification, err := json.Marshal(bundle.Verification)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO scan_runs (id, started_at, finished_at, catalog_version, incomplete, coverage_percentage, verification)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		bundle.RunID,
		bundle.StartedAt,
		bundle.FinishedAt,
		bundle.CatalogVersion,
		bundle.Incomplete,
		bundle.Verification.CoveragePercentage,
		verification,
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}

	for _, record := range bundle.Classifications {
		evidence, err := json.Marshal(record.Evidence)
		if err != nil {
			return fmt.Errorf("marshal evidence: %w", err)
		}
		notes, err := json.Marshal(record.ValidationNotes)
		if err != nil {
			return fmt.Errorf("marshal validation notes: %w", err)
		}

		var errMessage sql.NullString
		if record.Error != "" {
			errMessage = sql.NullString{String: record.Error, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO scan_records (run_id, document_id, type_id, confidence, rationale, evidence, validation_notes, error_message, from_cache)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			bundle.RunID,
			record.DocumentID,
			record.TypeID,
			record.Confidence,
			record.Rationale,
			evidence,
			notes,
			errMessage,
			record.FromCache,
		)
		if err != nil {
			return fmt.Errorf("insert scan record %s: %w", record.DocumentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

var _ ports.RunStore = (*RunRepository)(nil)
