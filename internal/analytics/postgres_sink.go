package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of pgxpool.Pool the sink uses; it allows tests to
// substitute a mock pool.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresSink appends events to a Postgres table.
type PostgresSink struct {
	pool PgxPool
}

// NewPostgresSink creates a sink over a new connection pool.
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	return &PostgresSink{pool: pool}, nil
}

// NewPostgresSinkWithPool wraps an existing pool, mainly for tests.
func NewPostgresSinkWithPool(pool PgxPool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// Consume appends one event row. Event-specific fields are stored as a
// JSONB column.
func (s *PostgresSink) Consume(ctx context.Context, evt Event) error {
	fields, err := json.Marshal(evt.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	query := `
		INSERT INTO preview_events
			(event, ts, path, referrer, user_agent, country, city, platform, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = s.pool.Exec(ctx, query,
		evt.Name,
		evt.TS,
		evt.Path,
		nullable(evt.Referrer),
		nullable(evt.UserAgent),
		nullable(evt.Country),
		nullable(evt.City),
		evt.Platform,
		fields,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *PostgresSink) Close(context.Context) error {
	s.pool.Close()
	return nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
