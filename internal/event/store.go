package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/lib/pq"
)

// ErrAlreadyApplied indicates the dedup key is already marked
var ErrAlreadyApplied = errors.New("event already applied")

// AppliedStore is the durable set of already-applied event keys.
// MarkApplied must be atomic: exactly one concurrent caller wins.
type AppliedStore interface {
	// MarkApplied records the key, returning ErrAlreadyApplied if present.
	MarkApplied(ctx context.Context, key string) error

	// Applied reports whether the key has been recorded.
	Applied(ctx context.Context, key string) (bool, error)

	// Unmark removes a key, used to roll back failed processing.
	Unmark(ctx context.Context, key string) error
}

// MemoryAppliedStore is the in-memory AppliedStore implementation
type MemoryAppliedStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemoryAppliedStore creates an empty in-memory store
func NewMemoryAppliedStore() *MemoryAppliedStore {
	return &MemoryAppliedStore{keys: make(map[string]struct{})}
}

func (s *MemoryAppliedStore) MarkApplied(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return ErrAlreadyApplied
	}
	s.keys[key] = struct{}{}
	return nil
}

func (s *MemoryAppliedStore) Applied(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok, nil
}

func (s *MemoryAppliedStore) Unmark(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// PostgresAppliedStore persists applied keys in a unique-keyed table.
// The unique violation is what makes the mark atomic under concurrent
// redelivery.
type PostgresAppliedStore struct {
	db *sql.DB
}

// NewPostgresAppliedStore creates a new Postgres-backed store
func NewPostgresAppliedStore(db *sql.DB) *PostgresAppliedStore {
	return &PostgresAppliedStore{db: db}
}

func (s *PostgresAppliedStore) MarkApplied(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO applied_events (key) VALUES ($1)`, key)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyApplied
		}
		return fmt.Errorf("failed to mark event applied: %w", err)
	}
	return nil
}

func (s *PostgresAppliedStore) Applied(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM applied_events WHERE key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check applied event: %w", err)
	}
	return exists, nil
}

func (s *PostgresAppliedStore) Unmark(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM applied_events WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to unmark event: %w", err)
	}
	return nil
}
