package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// QueryRecord is one audited chat message.
type QueryRecord struct {
	ID        int64
	Timestamp time.Time
	TraceID   string
	Sender    string
	// Channel is the transport the message arrived on: "matrix", "http" or
	// "cli".
	Channel   string
	Text      string
	Stage     string
	Kind      string
	Domain    string
	Period    string
	Effective string
	Source    string
	Duration  time.Duration
}

// DefaultTail is the number of rows RecentQueries returns for limit <= 0.
const DefaultTail = 20

// RecordQuery appends q to the audit log. ID and, when zero, Timestamp are
// filled in.
func (s *Store) RecordQuery(ctx context.Context, q *QueryRecord) error {
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO query_log (ts, trace_id, sender, channel, text, stage, kind, domain, period, effective, source, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.Timestamp, q.TraceID, q.Sender, q.Channel, q.Text, q.Stage,
		nullable(q.Kind), nullable(q.Domain), nullable(q.Period), nullable(q.Effective), nullable(q.Source),
		q.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		q.ID = id
	}
	return nil
}

// RecentQueries returns the newest limit records, newest first.
func (s *Store) RecentQueries(ctx context.Context, limit int) ([]*QueryRecord, error) {
	if limit <= 0 {
		limit = DefaultTail
	}
	return s.selectQueries(ctx, "ORDER BY id DESC LIMIT ?", limit)
}

// QueriesByTrace returns every record carrying traceID, oldest first.
func (s *Store) QueriesByTrace(ctx context.Context, traceID string) ([]*QueryRecord, error) {
	return s.selectQueries(ctx, "WHERE trace_id = ? ORDER BY id ASC", traceID)
}

// CountQueries returns the number of audited messages.
func (s *Store) CountQueries(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM query_log").Scan(&n); err != nil {
		return 0, fmt.Errorf("count queries: %w", err)
	}
	return n, nil
}

func (s *Store) selectQueries(ctx context.Context, clause string, args ...any) ([]*QueryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, trace_id, sender, channel, text, stage, kind, domain, period, effective, source, duration_ms
		FROM query_log `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	var out []*QueryRecord
	for rows.Next() {
		var (
			q                                       QueryRecord
			kind, domain, period, effective, source sql.NullString
			ms                                      int64
		)
		if err := rows.Scan(&q.ID, &q.Timestamp, &q.TraceID, &q.Sender, &q.Channel, &q.Text, &q.Stage,
			&kind, &domain, &period, &effective, &source, &ms); err != nil {
			return nil, fmt.Errorf("scan query record: %w", err)
		}
		q.Kind, q.Domain, q.Period = kind.String, domain.String, period.String
		q.Effective, q.Source = effective.String, source.String
		q.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query log: %w", err)
	}
	return out, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
