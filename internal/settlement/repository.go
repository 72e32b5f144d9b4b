package settlement

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage collaborator contract for settlements
type Repository interface {
	// Create persists a new settlement.
	Create(ctx context.Context, s *Settlement) error

	// GetByID returns the settlement or nil when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Settlement, error)

	// Update persists the mutable fields of an existing settlement.
	Update(ctx context.Context, s *Settlement) error

	// ListByGroup returns a group's settlements, newest first.
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Settlement, error)

	// ListByUser returns settlements where the user is payer or recipient.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Settlement, error)

	// ListPendingForUser returns PENDING settlements awaiting the user's
	// confirmation.
	ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]*Settlement, error)
}
