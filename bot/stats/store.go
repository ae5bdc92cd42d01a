// Package stats persists the user roster and usage counters backing /stats
// and /broadcast.
package stats

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Counter is a named usage counter row.
type Counter struct {
	Action string `db:"action"`
	Count  int64  `db:"count"`
}

// Store is the Postgres-backed persistence layer.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// UpsertUser records a user on first contact and refreshes the stored name
// on subsequent contacts.
func (s *Store) UpsertUser(ctx context.Context, userID int64, firstName string) error {
	const q = `
		INSERT INTO users (user_id, first_name)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET first_name = EXCLUDED.first_name`
	if _, err := s.db.ExecContext(ctx, q, userID, firstName); err != nil {
		return fmt.Errorf("stats: upsert user %d: %w", userID, err)
	}
	return nil
}

// Increment bumps the named counter, creating it at 1 on first use.
func (s *Store) Increment(ctx context.Context, action string) error {
	const q = `
		INSERT INTO stats (action, count)
		VALUES ($1, 1)
		ON CONFLICT (action) DO UPDATE SET count = stats.count + 1`
	if _, err := s.db.ExecContext(ctx, q, action); err != nil {
		return fmt.Errorf("stats: increment %s: %w", action, err)
	}
	return nil
}

// ListCounters returns all counters, most used first.
func (s *Store) ListCounters(ctx context.Context) ([]Counter, error) {
	var out []Counter
	const q = `SELECT action, count FROM stats ORDER BY count DESC, action ASC`
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("stats: list counters: %w", err)
	}
	return out, nil
}

// CountUsers returns the total number of users ever seen.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("stats: count users: %w", err)
	}
	return n, nil
}

// ListUserIDs returns every known user id, oldest first.
func (s *Store) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	const q = `SELECT user_id FROM users ORDER BY joined_at ASC, user_id ASC`
	if err := s.db.SelectContext(ctx, &ids, q); err != nil {
		return nil, fmt.Errorf("stats: list user ids: %w", err)
	}
	return ids, nil
}
