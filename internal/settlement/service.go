package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitter/internal/event"
)

// Common errors
var (
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrCannotSettleSelf   = errors.New("cannot create settlement with yourself")
	ErrNonPositiveAmount  = errors.New("settlement amount must be positive")
)

// Service governs the settlement lifecycle. A settlement is a claim
// of payment: it starts PENDING and becomes ledger-affecting exactly
// once, when the named recipient confirms it. CONFIRMED, REJECTED
// and CANCELLED are all terminal.
type Service struct {
	repo    Repository
	applier *event.Applier
}

// NewService creates a new settlement service
func NewService(repo Repository, applier *event.Applier) *Service {
	return &Service{repo: repo, applier: applier}
}

// Create records a new PENDING settlement. The acting user names
// themselves as payer; paying yourself is rejected outright.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateSettlementRequest) (*Settlement, error) {
	if creatorID == req.ToUserID {
		return nil, ErrCannotSettleSelf
	}
	if !req.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	method := req.PaymentMethod
	if method == "" {
		method = PaymentMethodOther
	}
	date := time.Now()
	if req.SettlementDate != nil {
		date = *req.SettlementDate
	}

	now := time.Now()
	settlement := &Settlement{
		ID:             uuid.New(),
		GroupID:        req.GroupID,
		FromUserID:     creatorID,
		ToUserID:       req.ToUserID,
		Amount:         req.Amount,
		Currency:       currency,
		Status:         StatusPending,
		PaymentMethod:  method,
		SettlementDate: date,
		Notes:          req.Notes,
		CreatedBy:      creatorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, settlement); err != nil {
		return nil, err
	}

	return settlement, nil
}

// GetByID retrieves a settlement by its ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Settlement, error) {
	settlement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}
	return settlement, nil
}

// Confirm transitions a PENDING settlement to CONFIRMED and applies
// its one-time ledger effect. Only the named recipient may confirm.
// The ledger delta is keyed by the settlement id, so a confirm retry
// after a partial failure converges instead of double-applying.
func (s *Service) Confirm(ctx context.Context, settlementID, userID uuid.UUID) (*Settlement, error) {
	settlement, err := s.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	if settlement.ToUserID != userID {
		return nil, &UnauthorizedError{UserID: userID, Action: "confirm"}
	}
	if settlement.Status != StatusPending {
		return nil, &StateError{Current: settlement.Status, Action: "confirm"}
	}

	// Ledger first, status second: if the status write fails the retry
	// hits the dedup key and skips straight to the status update.
	confirmed := event.SettlementConfirmed{
		SettlementID: settlement.ID,
		GroupID:      settlement.GroupID,
		FromUserID:   settlement.FromUserID,
		ToUserID:     settlement.ToUserID,
		Amount:       settlement.Amount,
		Currency:     settlement.Currency,
	}
	if err := s.applier.Apply(ctx, confirmed); err != nil {
		var duplicate *event.DuplicateEventError
		if !errors.As(err, &duplicate) {
			return nil, fmt.Errorf("failed to apply settlement to ledger: %w", err)
		}
	}

	settlement.Status = StatusConfirmed
	settlement.ConfirmedBy = &userID
	if err := s.repo.Update(ctx, settlement); err != nil {
		return nil, err
	}

	return settlement, nil
}

// Reject transitions a PENDING settlement to REJECTED with no ledger
// effect. Only the named recipient may reject; an optional reason is
// appended to the notes.
func (s *Service) Reject(ctx context.Context, settlementID, userID uuid.UUID, reason string) (*Settlement, error) {
	settlement, err := s.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	if settlement.ToUserID != userID {
		return nil, &UnauthorizedError{UserID: userID, Action: "reject"}
	}
	if settlement.Status != StatusPending {
		return nil, &StateError{Current: settlement.Status, Action: "reject"}
	}

	settlement.Status = StatusRejected
	if reason != "" {
		if settlement.Notes != "" {
			settlement.Notes += "\n"
		}
		settlement.Notes += "rejected: " + reason
	}
	if err := s.repo.Update(ctx, settlement); err != nil {
		return nil, err
	}

	return settlement, nil
}

// Cancel transitions a PENDING settlement to CANCELLED with no ledger
// effect. Only the original creator may cancel.
func (s *Service) Cancel(ctx context.Context, settlementID, userID uuid.UUID) (*Settlement, error) {
	settlement, err := s.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	if settlement.CreatedBy != userID {
		return nil, &UnauthorizedError{UserID: userID, Action: "cancel"}
	}
	if settlement.Status != StatusPending {
		return nil, &StateError{Current: settlement.Status, Action: "cancel"}
	}

	settlement.Status = StatusCancelled
	if err := s.repo.Update(ctx, settlement); err != nil {
		return nil, err
	}

	return settlement, nil
}

// ListByGroup returns a group's settlements, newest first
func (s *Service) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Settlement, error) {
	return s.repo.ListByGroup(ctx, groupID)
}

// ListByUser returns settlements where the user is payer or recipient
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Settlement, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListPendingForUser returns PENDING settlements awaiting the user
func (s *Service) ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]*Settlement, error) {
	return s.repo.ListPendingForUser(ctx, userID)
}
