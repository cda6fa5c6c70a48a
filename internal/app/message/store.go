/*
Package message implements the durable, append-only chat message store.

Messages are immutable once written: there is no update or delete path. The store
is queryable by participant pair in either direction, ordered newest first.
*/
package message

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultHistoryLimit is the number of records a history query returns when
// the caller does not specify a limit.
const DefaultHistoryLimit = 10

// Record is one persisted chat message.
type Record struct {
	ID        uuid.UUID `json:"-"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"timestamp"`
}

// Store is the persistence boundary for chat messages.
type Store interface {
	// Append durably records one message. The record's ID and CreatedAt must
	// already be populated by the caller.
	Append(ctx context.Context, rec Record) error

	// History returns messages exchanged between userA and userB in either
	// direction, newest first, capped at limit.
	History(ctx context.Context, userA, userB string, limit int) ([]Record, error)
}

// PGStore implements Store on top of a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore backed by the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// NewRecord builds a Record with a fresh ID and a UTC creation timestamp.
func NewRecord(sender, recipient, body string) Record {
	return Record{
		ID:        uuid.New(),
		Sender:    sender,
		Recipient: recipient,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// Append durably records one message.
func (s *PGStore) Append(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, sender, recipient, body, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.Sender, rec.Recipient, rec.Body, rec.CreatedAt,
	)
	return err
}

// History returns messages exchanged between userA and userB in either
// direction, newest first, capped at limit. A non-positive limit falls back
// to DefaultHistoryLimit.
func (s *PGStore) History(ctx context.Context, userA, userB string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, sender, recipient, body, created_at
		 FROM messages
		 WHERE (sender = $1 AND recipient = $2) OR (sender = $2 AND recipient = $1)
		 ORDER BY created_at DESC
		 LIMIT $3`,
		userA, userB, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Sender, &rec.Recipient, &rec.Body, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
