package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/lei/plr-summary/internal/models"
)

// timeLayout sorts lexically in chronological order
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store keeps a history of summaries per PipelineRun
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and creates if missing) the SQLite database at dsn.
// ":memory:" gives a private in-memory database.
func Open(dsn string) (*Store, error) {
	memory := dsn == ":memory:"
	if !memory && !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if memory {
		// Every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, multierr.Append(fmt.Errorf("migrate: %w", err), db.Close())
	}
	return s, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS summaries (
		id          TEXT PRIMARY KEY,
		namespace   TEXT NOT NULL,
		name        TEXT NOT NULL,
		status      TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		payload     TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_run ON summaries(namespace, name, recorded_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a summary unless the latest stored summary for the same run
// has the same status. It reports whether a row was written.
func (s *Store) Record(ctx context.Context, summary models.Summary) (bool, error) {
	last, err := s.lastStatus(ctx, summary.Namespace, summary.Name)
	if err != nil {
		return false, err
	}
	if last == summary.Status {
		return false, nil
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return false, fmt.Errorf("encode summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO summaries (id, namespace, name, status, recorded_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), summary.Namespace, summary.Name, string(summary.Status),
		s.now().UTC().Format(timeLayout), string(payload),
	)
	if err != nil {
		return false, fmt.Errorf("insert summary: %w", err)
	}
	return true, nil
}

func (s *Store) lastStatus(ctx context.Context, namespace, name string) (models.Status, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM summaries WHERE namespace = ? AND name = ?
		 ORDER BY recorded_at DESC, rowid DESC LIMIT 1`,
		namespace, name,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last status: %w", err)
	}
	return models.Status(status), nil
}

// History returns up to limit recorded summaries for a run, newest first.
// A non-positive limit returns all of them.
func (s *Store) History(ctx context.Context, namespace, name string, limit int) ([]models.SummaryRecord, error) {
	query := `SELECT id, recorded_at, payload FROM summaries
		WHERE namespace = ? AND name = ?
		ORDER BY recorded_at DESC, rowid DESC`
	args := []any{namespace, name}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := make([]models.SummaryRecord, 0)
	for rows.Next() {
		var rec models.SummaryRecord
		var recordedAt, payload string
		if err := rows.Scan(&rec.ID, &recordedAt, &payload); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if rec.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Summary); err != nil {
			return nil, fmt.Errorf("decode summary %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Ping checks the database is usable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
