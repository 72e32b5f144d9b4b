package settlement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the status of a settlement.
// PENDING is the only non-terminal state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed
func (s Status) Terminal() bool {
	return s != StatusPending
}

// PaymentMethod is how the payer claims the money moved
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodPaypal       PaymentMethod = "PAYPAL"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// Settlement is a user-asserted claim of payment. It only affects the
// ledger once the recipient confirms it, and does so exactly once.
type Settlement struct {
	ID             uuid.UUID       `json:"id"`
	GroupID        uuid.UUID       `json:"group_id"`
	FromUserID     uuid.UUID       `json:"from_user_id"` // who claims to have paid
	ToUserID       uuid.UUID       `json:"to_user_id"`   // who must confirm
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

// StateError reports an illegal lifecycle transition, naming the
// state the settlement is actually in.
type StateError struct {
	Current Status
	Action  string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a settlement in state %s", e.Action, e.Current)
}

// UnauthorizedError reports a transition attempted by the wrong actor
type UnauthorizedError struct {
	UserID uuid.UUID
	Action string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("user %s is not allowed to %s this settlement", e.UserID, e.Action)
}
