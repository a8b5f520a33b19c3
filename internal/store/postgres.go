package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/observer"
)

// PostgresStore implements Store using PostgreSQL, for deployments that
// share one stream-spec/event log across multiple hub hosts.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres opens dsn via pgx's database/sql driver and runs migrations.
func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS streams (
			id TEXT PRIMARY KEY,
			spec JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			seq BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			agent_id TEXT NOT NULL DEFAULT '',
			pin TEXT NOT NULL DEFAULT '',
			key TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			value_json JSONB NOT NULL DEFAULT 'null',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_seq ON events(seq)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n  SQL: %s", err, m)
		}
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *PostgresStore) Close() error                   { return s.db.Close() }

func (s *PostgresStore) SaveStream(ctx context.Context, id string, spec agent.AgentStreamSpec) error {
	raw, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal stream spec: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO streams (id, spec, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT(id) DO UPDATE SET spec=EXCLUDED.spec, updated_at=EXCLUDED.updated_at`,
		id, raw, time.Now(),
	)
	return err
}

func (s *PostgresStore) LoadStream(ctx context.Context, id string) (agent.AgentStreamSpec, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, "SELECT spec FROM streams WHERE id = $1", id).Scan(&raw)
	if err != nil {
		return agent.AgentStreamSpec{}, err
	}
	var spec agent.AgentStreamSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return agent.AgentStreamSpec{}, fmt.Errorf("unmarshal stream spec: %w", err)
	}
	return spec, nil
}

func (s *PostgresStore) ListStreamIDs(ctx context.Context) ([]string, error) {
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

func (s *PostgresStore) DeleteStream(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM streams WHERE id = $1", id)
	return err
}

func (s *PostgresStore) AppendEvent(ctx context.Context, e observer.Event) error {
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
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(e.Kind), e.AgentID, e.Pin, e.Key, e.Message, valueJSON, ts,
	)
	return err
}

func (s *PostgresStore) ListEvents(ctx context.Context, afterSeq int64, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, kind, agent_id, pin, key, message, value_json, created_at
		 FROM events WHERE seq > $1 ORDER BY seq LIMIT $2`,
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
		var valueJSON []byte
		if err := rows.Scan(&se.Seq, &kind, &se.AgentID, &se.Pin, &se.Key, &se.Message, &valueJSON, &se.CreatedAt); err != nil {
			return nil, err
		}
		se.Kind = observer.Kind(kind)
		se.ValueJSON = valueJSON
		out = append(out, se)
	}
	return out, rows.Err()
}
