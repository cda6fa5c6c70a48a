/*
Package profile stores the push profile registered for each user identifier.

A profile maps a user id to a display name and the device token used by the
notification gateway when the user is offline.
*/
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no profile is registered for a user id.
var ErrNotFound = errors.New("profile not found")

// Record is the push profile for one user.
type Record struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	DeviceToken string `json:"device_token"`
}

// Store is the persistence boundary for push profiles.
type Store interface {
	// Get returns the profile for userID, or ErrNotFound.
	Get(ctx context.Context, userID string) (Record, error)

	// Upsert inserts or replaces the profile for rec.UserID.
	Upsert(ctx context.Context, rec Record) error
}

// PGStore implements Store on top of a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore backed by the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Get returns the profile for userID, or ErrNotFound.
func (s *PGStore) Get(ctx context.Context, userID string) (Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, display_name, device_token FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&rec.UserID, &rec.DisplayName, &rec.DeviceToken)

	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

// Upsert inserts or replaces the profile for rec.UserID.
func (s *PGStore) Upsert(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, display_name, device_token, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET display_name = EXCLUDED.display_name,
		     device_token = EXCLUDED.device_token,
		     updated_at   = EXCLUDED.updated_at`,
		rec.UserID, rec.DisplayName, rec.DeviceToken, time.Now().UTC(),
	)
	return err
}
