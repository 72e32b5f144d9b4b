package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceEntry is the single canonical directed debt between a pair
// of users within a group and currency. Amount is positive and means
// "FromUserID owes ToUserID". Only one entry ever exists per
// unordered pair; zero-valued entries are absent.
type BalanceEntry struct {
	GroupID    uuid.UUID       `json:"group_id"`
	FromUserID uuid.UUID       `json:"from_user_id"`
	ToUserID   uuid.UUID       `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TransactionKind classifies what produced a ledger delta
type TransactionKind string

const (
	TransactionKindExpense    TransactionKind = "EXPENSE"
	TransactionKindSettlement TransactionKind = "SETTLEMENT"
)

// Transaction is one audit row recorded for every applied delta.
// The ledger state can always be replayed from these.
type Transaction struct {
	ID          int64           `json:"id"`
	GroupID     uuid.UUID       `json:"group_id"`
	FromUserID  uuid.UUID       `json:"from_user_id"`
	ToUserID    uuid.UUID       `json:"to_user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Kind        TransactionKind `json:"kind"`
	ReferenceID uuid.UUID       `json:"reference_id"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Delta is a signed balance adjustment: FromUserID's debt to
// ToUserID increases by Amount (negative decreases or reverses).
type Delta struct {
	GroupID     uuid.UUID
	FromUserID  uuid.UUID
	ToUserID    uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Kind        TransactionKind
	ReferenceID uuid.UUID
	Description string
}

// SimplifiedDebt is one payment instruction from the debt
// simplification algorithm. Ephemeral, never persisted.
type SimplifiedDebt struct {
	FromUserID uuid.UUID       `json:"from_user_id"`
	ToUserID   uuid.UUID       `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency,omitempty"`
}

// GroupBalanceSummary bundles a group's open balances with the
// reduced payment set that would settle them.
type GroupBalanceSummary struct {
	GroupID         uuid.UUID        `json:"group_id"`
	Balances        []*BalanceEntry  `json:"balances"`
	SimplifiedDebts []SimplifiedDebt `json:"simplified_debts"`
}
