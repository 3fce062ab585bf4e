package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

const (
	historyFileName   = "history.db"
	// fixed width keeps lexical and chronological order identical
	historyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Outcome describes how a session ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeStopped   Outcome = "stopped"
)

// SessionRecord is one finished training session.
type SessionRecord struct {
	ID         string
	SchemaID   string
	SchemaName string
	StartedAt  time.Time
	EndedAt    time.Time
	Planned    time.Duration
	Completed  time.Duration
	Outcome    Outcome
}

// History provides SQLite persistence for finished sessions.
type History struct {
	db *sql.DB
}

// HistoryPath returns the database location inside dir.
func HistoryPath(dir string) string {
	return filepath.Join(dir, historyFileName)
}

// OpenHistory opens the history database and runs migrations.
func OpenHistory(dbPath string) (*History, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	history := &History{db: db}
	if err := history.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return history, nil
}

// Close closes the database connection.
func (history *History) Close() error {
	return history.db.Close()
}

func (history *History) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		schema_id TEXT NOT NULL,
		schema_name TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		planned_ms INTEGER NOT NULL,
		completed_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL CHECK(outcome IN ('completed', 'stopped'))
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
	`
	_, err := history.db.Exec(schema)
	return err
}

// Record stores a finished session. A missing ID is generated.
func (history *History) Record(ctx context.Context, record SessionRecord) (SessionRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	query := `
	INSERT INTO sessions (id, schema_id, schema_name, started_at, ended_at, planned_ms, completed_ms, outcome)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := history.db.ExecContext(ctx, query,
		record.ID,
		record.SchemaID,
		record.SchemaName,
		record.StartedAt.UTC().Format(historyTimeLayout),
		record.EndedAt.UTC().Format(historyTimeLayout),
		record.Planned.Milliseconds(),
		record.Completed.Milliseconds(),
		string(record.Outcome),
	)
	if err != nil {
		return record, fmt.Errorf("record session: %w", err)
	}
	return record, nil
}

// List returns the most recent sessions first. A limit <= 0 returns all.
func (history *History) List(ctx context.Context, limit int) ([]SessionRecord, error) {
	query := `
	SELECT id, schema_id, schema_name, started_at, ended_at, planned_ms, completed_ms, outcome
	FROM sessions
	ORDER BY started_at DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := history.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []SessionRecord
	for rows.Next() {
		var (
			record             SessionRecord
			startedAt, endedAt string
			plannedMS          int64
			completedMS        int64
			outcome            string
		)
		if err := rows.Scan(&record.ID, &record.SchemaID, &record.SchemaName,
			&startedAt, &endedAt, &plannedMS, &completedMS, &outcome); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if record.StartedAt, err = time.Parse(historyTimeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if record.EndedAt, err = time.Parse(historyTimeLayout, endedAt); err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		record.Planned = time.Duration(plannedMS) * time.Millisecond
		record.Completed = time.Duration(completedMS) * time.Millisecond
		record.Outcome = Outcome(outcome)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return records, nil
}
