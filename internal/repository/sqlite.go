// Package store persists the engine's audit trail: one record per processed
// turn and one per confirmation decision. The audit log is write-only
// history for operations; conversation state itself stays in-process.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TurnRecord is the audit row for one processed query.
type TurnRecord struct {
	TurnID          string    `json:"turn_id"`
	SessionID       string    `json:"session_id"`
	Query           string    `json:"query"`
	Response        string    `json:"response"`
	Capability      string    `json:"capability"`
	Confidence      float64   `json:"confidence"`
	MultiCapability bool      `json:"multi_capability"`
	ResultCount     int       `json:"result_count"`
	WorkflowPath    string    `json:"workflow_path"`
	IsError         bool      `json:"is_error"`
	DurationMs      int64     `json:"duration_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

// DecisionRecord is the audit row for one confirmation decision.
type DecisionRecord struct {
	ConfirmationID string    `json:"confirmation_id"`
	SessionID      string    `json:"session_id"`
	Action         string    `json:"action"`
	OK             bool      `json:"ok"`
	Reason         string    `json:"reason,omitempty"`
	DecidedAt      time.Time `json:"decided_at"`
}

// Store defines the audit log operations.
type Store interface {
	RecordTurn(ctx context.Context, rec *TurnRecord) error
	RecordDecision(ctx context.Context, rec *DecisionRecord) error
	ListTurns(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			turn_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			query TEXT NOT NULL,
			response TEXT NOT NULL,
			capability TEXT,
			confidence REAL NOT NULL,
			multi_capability INTEGER NOT NULL DEFAULT 0,
			result_count INTEGER NOT NULL DEFAULT 0,
			workflow_path TEXT,
			is_error INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS confirmation_decisions (
			confirmation_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			action TEXT NOT NULL,
			ok INTEGER NOT NULL,
			reason TEXT,
			decided_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_session ON confirmation_decisions(session_id, decided_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// RecordTurn appends one turn record.
func (s *SQLiteStore) RecordTurn(ctx context.Context, rec *TurnRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (turn_id, session_id, query, response, capability, confidence,
			multi_capability, result_count, workflow_path, is_error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TurnID, rec.SessionID, rec.Query, rec.Response, rec.Capability, rec.Confidence,
		boolToInt(rec.MultiCapability), rec.ResultCount, rec.WorkflowPath,
		boolToInt(rec.IsError), rec.DurationMs, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

// RecordDecision appends one confirmation decision record.
func (s *SQLiteStore) RecordDecision(ctx context.Context, rec *DecisionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO confirmation_decisions (confirmation_id, session_id, action, ok, reason, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ConfirmationID, rec.SessionID, rec.Action, boolToInt(rec.OK), rec.Reason, rec.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	return nil
}

// ListTurns returns the most recent turn records for a session, newest first.
func (s *SQLiteStore) ListTurns(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, session_id, query, response, capability, confidence,
			multi_capability, result_count, workflow_path, is_error, duration_ms, created_at
		 FROM turns WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	defer rows.Close()

	var records []TurnRecord
	for rows.Next() {
		var rec TurnRecord
		var multi, isErr int
		var capability, path sql.NullString
		if err := rows.Scan(&rec.TurnID, &rec.SessionID, &rec.Query, &rec.Response,
			&capability, &rec.Confidence, &multi, &rec.ResultCount, &path,
			&isErr, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		rec.Capability = capability.String
		rec.WorkflowPath = path.String
		rec.MultiCapability = multi != 0
		rec.IsError = isErr != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
