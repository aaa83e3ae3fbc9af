package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const createAttemptsTable = `
CREATE TABLE IF NOT EXISTS attempts (
	id                  TEXT PRIMARY KEY,
	scenario_id         TEXT NOT NULL,
	verdict             TEXT NOT NULL,
	action              TEXT NOT NULL,
	host_contained      BOOLEAN NOT NULL,
	findings_text       TEXT NOT NULL DEFAULT '',
	score               INTEGER NOT NULL,
	verdict_correct     BOOLEAN NOT NULL,
	action_correct      BOOLEAN NOT NULL,
	containment_correct BOOLEAN NOT NULL,
	submitted_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_scenario ON attempts (scenario_id, submitted_at DESC);
`

// PostgresConfig holds connection settings for the attempt history database.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresRecorder persists attempts in Postgres.
type PostgresRecorder struct {
	db *sqlx.DB
}

// NewPostgresRecorder connects, verifies the connection and ensures the
// schema exists.
func NewPostgresRecorder(ctx context.Context, cfg PostgresConfig) (*PostgresRecorder, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to history database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if _, err := db.ExecContext(ctx, createAttemptsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure attempts schema: %w", err)
	}
	return &PostgresRecorder{db: db}, nil
}

func (p *PostgresRecorder) Record(ctx context.Context, attempt Attempt) error {
	const q = `
		INSERT INTO attempts (
			id, scenario_id, verdict, action, host_contained, findings_text,
			score, verdict_correct, action_correct, containment_correct, submitted_at
		) VALUES (
			:id, :scenario_id, :verdict, :action, :host_contained, :findings_text,
			:score, :verdict_correct, :action_correct, :containment_correct, :submitted_at
		)`

	if _, err := p.db.NamedExecContext(ctx, q, attempt); err != nil {
		return fmt.Errorf("insert attempt %s: %w", attempt.ID, err)
	}
	return nil
}

func (p *PostgresRecorder) ListByScenario(ctx context.Context, scenarioID string) ([]Attempt, error) {
	const q = `
		SELECT id, scenario_id, verdict, action, host_contained, findings_text,
		       score, verdict_correct, action_correct, containment_correct, submitted_at
		FROM attempts
		WHERE scenario_id = $1
		ORDER BY submitted_at DESC`

	var attempts []Attempt
	if err := p.db.SelectContext(ctx, &attempts, q, scenarioID); err != nil {
		return nil, fmt.Errorf("list attempts for %s: %w", scenarioID, err)
	}
	return attempts, nil
}

func (p *PostgresRecorder) Close() error {
	return p.db.Close()
}
