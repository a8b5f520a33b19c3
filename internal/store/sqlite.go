package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/observer"
)

// SQLiteStore implements Store using SQLite (pure Go, no cgo). It is the
// default backend: a single-host embedded deployment needs nothing more.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens dsn and runs migrations. ":memory:" is rewritten to a
// shared-cache DSN so pooled connections see the same in-memory database.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS streams (
			id TEXT PRIMARY KEY,
			spec TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			agent_id TEXT NOT NULL DEFAULT '',
			pin TEXT NOT NULL DEFAULT '',
			key TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			value_json TEXT NOT NULL DEFAULT 'null',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_seq ON events(seq)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n  SQL: %s", err, m)
		}
	}
	// addColumnIfNotExists-style evolution point: future columns land here,
	// guarded the same way the teacher's store handles sqlite's lack of
	// "ADD COLUMN IF NOT EXISTS".
	return nil
}

func (s *SQLiteStore) addColumnIfNotExists(table, column, definition string) error {
	_, err := s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	if err != nil && strings.Contains(err.Error(), "duplicate column") {
		return nil
	}
	return err
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *SQLiteStore) Close() error                   { return s.db.Close() }

func (s *SQLiteStore) SaveStream(ctx context.Context, id string, spec agent.AgentStreamSpec) error {
	raw, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal stream spec: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO streams (id, spec, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET spec=excluded.spec, updated_at=excluded.updated_at`,
		id, string(raw), time.Now(),
	)
	return err
}

func (s *SQLiteStore) LoadStream(ctx context.Context, id string) (agent.AgentStreamSpec, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT spec FROM streams WHERE id = ?", id).Scan(&raw)
	if err != nil {
		return agent.AgentStreamSpec{}, err
	}
	var spec agent.AgentStreamSpec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return agent.AgentStreamSpec{}, fmt.Errorf("unmarshal stream spec: %w", err)
	}
	return spec, nil
}

func (s *SQLiteStore) ListStreamIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM streams ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) DeleteStream(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM streams WHERE id = ?", id)
	return err
}

func (s *SQLiteStore) AppendEvent(ctx context.Context, e observer.Event) error {
	valueJSON, err := json.Marshal(e.Value)
	if err != nil {
		return fmt.Errorf("marshal event value: %w", err)
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (kind, agent_id, pin, key, message, value_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(e.Kind), e.AgentID, e.Pin, e.Key, e.Message, string(valueJSON), ts,
	)
	return err
}

func (s *SQLiteStore) ListEvents(ctx context.Context, afterSeq int64, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, kind, agent_id, pin, key, message, value_json, created_at
		 FROM events WHERE seq > ? ORDER BY seq LIMIT ?`,
		afterSeq, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []StoredEvent
	for rows.Next() {
		var se StoredEvent
		var kind string
		var valueJSON string
		if err := rows.Scan(&se.Seq, &kind, &se.AgentID, &se.Pin, &se.Key, &se.Message, &valueJSON, &se.CreatedAt); err != nil {
			return nil, err
		}
		se.Kind = observer.Kind(kind)
		se.ValueJSON = []byte(valueJSON)
		out = append(out, se)
	}
	return out, rows.Err()
}
