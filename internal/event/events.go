// Package event consumes the typed domain events emitted by the
// surrounding services and drives the ledger. Delivery is at least
// once; every event carries a dedup key so its effect lands at most
// once.
package event

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitter/internal/expense/split"
)

// Event type identifiers, as carried on the wire envelope
const (
	TypeExpenseCreated      = "expense.created"
	TypeExpenseDeleted      = "expense.deleted"
	TypeSettlementConfirmed = "settlement.confirmed"
)

// ExpenseCreated is emitted by the expense service after an expense
// has been accepted upstream. Participants are ordered; the order
// decides remainder allocation.
type ExpenseCreated struct {
	ExpenseID    uuid.UUID           `json:"expense_id"`
	GroupID      uuid.UUID           `json:"group_id"`
	PayerID      uuid.UUID           `json:"payer_id"`
	Description  string              `json:"description,omitempty"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Currency     string              `json:"currency"`
	SplitType    split.Type          `json:"split_type"`
	Participants []split.Participant `json:"participants"`
}

// DedupKey identifies this event's one-time effect
func (e ExpenseCreated) DedupKey() string {
	return fmt.Sprintf("expense:%s:created", e.ExpenseID)
}

// StoredShare is one share exactly as it was applied when the expense
// was created. Deletion replays these, never a fresh computation.
type StoredShare struct {
	UserID uuid.UUID       `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// ExpenseDeleted is emitted when an expense is removed upstream. It
// must carry the original shares; the split rule visible now may no
// longer be the one the expense was created with.
type ExpenseDeleted struct {
	ExpenseID uuid.UUID     `json:"expense_id"`
	GroupID   uuid.UUID     `json:"group_id"`
	PayerID   uuid.UUID     `json:"payer_id"`
	Currency  string        `json:"currency"`
	Shares    []StoredShare `json:"shares"`
}

// DedupKey identifies this event's one-time effect
func (e ExpenseDeleted) DedupKey() string {
	return fmt.Sprintf("expense:%s:deleted", e.ExpenseID)
}

// CreatedKey is the dedup key of the creation this deletion inverts
func (e ExpenseDeleted) CreatedKey() string {
	return fmt.Sprintf("expense:%s:created", e.ExpenseID)
}

// SettlementConfirmed is emitted only after a settlement transitions
// to CONFIRMED. FromUserID is the payer of the settlement.
type SettlementConfirmed struct {
	SettlementID uuid.UUID       `json:"settlement_id"`
	GroupID      uuid.UUID       `json:"group_id"`
	FromUserID   uuid.UUID       `json:"from_user_id"`
	ToUserID     uuid.UUID       `json:"to_user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

// DedupKey identifies this event's one-time effect
func (e SettlementConfirmed) DedupKey() string {
	return fmt.Sprintf("settlement:%s:confirmed", e.SettlementID)
}
