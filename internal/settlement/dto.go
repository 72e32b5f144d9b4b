package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSettlementRequest represents the request to create a settlement.
// The acting user is always the payer.
type CreateSettlementRequest struct {
	GroupID        uuid.UUID       `json:"group_id"`
	ToUserID       uuid.UUID       `json:"to_user_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency,omitempty"`        // defaults to USD
	PaymentMethod  PaymentMethod   `json:"payment_method,omitempty"`  // defaults to OTHER
	SettlementDate *time.Time      `json:"settlement_date,omitempty"` // defaults to now
	Notes          string          `json:"notes,omitempty"`
}

// RejectSettlementRequest carries the optional rejection reason
type RejectSettlementRequest struct {
	Reason string `json:"reason,omitempty"`
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID             uuid.UUID       `json:"id"`
	GroupID        uuid.UUID       `json:"group_id"`
	FromUserID     uuid.UUID       `json:"from_user_id"`
	ToUserID       uuid.UUID       `json:"to_user_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Status         Status          `json:"status"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	SettlementDate time.Time       `json:"settlement_date"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      uuid.UUID       `json:"created_by"`
	ConfirmedBy    *uuid.UUID      `json:"confirmed_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToResponse converts a Settlement to its response shape
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:             s.ID,
		GroupID:        s.GroupID,
		FromUserID:     s.FromUserID,
		ToUserID:       s.ToUserID,
		Amount:         s.Amount,
		Currency:       s.Currency,
		Status:         s.Status,
		PaymentMethod:  s.PaymentMethod,
		SettlementDate: s.SettlementDate,
		Notes:          s.Notes,
		CreatedBy:      s.CreatedBy,
		ConfirmedBy:    s.ConfirmedBy,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
