package settlement

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is the in-memory Repository implementation
type MemoryRepository struct {
	mu          sync.RWMutex
	settlements map[uuid.UUID]*Settlement
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{settlements: make(map[uuid.UUID]*Settlement)}
}

// Create persists a new settlement
func (r *MemoryRepository) Create(ctx context.Context, s *Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *s
	r.settlements[s.ID] = &copied
	return nil
}

// GetByID returns a copy of the settlement or nil
func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Settlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settlements[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

// Update persists the mutable fields of an existing settlement
func (r *MemoryRepository) Update(ctx context.Context, s *Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *s
	copied.UpdatedAt = time.Now()
	r.settlements[s.ID] = &copied
	s.UpdatedAt = copied.UpdatedAt
	return nil
}

// ListByGroup returns a group's settlements, newest first
func (r *MemoryRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Settlement, error) {
	return r.list(func(s *Settlement) bool { return s.GroupID == groupID }), nil
}

// ListByUser returns settlements where the user is payer or recipient
func (r *MemoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Settlement, error) {
	return r.list(func(s *Settlement) bool {
		return s.FromUserID == userID || s.ToUserID == userID
	}), nil
}

// ListPendingForUser returns PENDING settlements awaiting the user
func (r *MemoryRepository) ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]*Settlement, error) {
	return r.list(func(s *Settlement) bool {
		return s.ToUserID == userID && s.Status == StatusPending
	}), nil
}

func (r *MemoryRepository) list(match func(*Settlement) bool) []*Settlement {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Settlement
	for _, s := range r.settlements {
		if match(s) {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
