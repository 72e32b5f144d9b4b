package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the storage collaborator contract for balance rows.
// Implementations store canonical rows only (from < to, as decided by
// the service) and must make AddToBalance an atomic read-modify-write
// per (group, pair, currency). Rows whose running amount reaches
// exactly zero are removed.
type Repository interface {
	// AddToBalance adds delta to the canonical row, creating it on first
	// nonzero delta and deleting it when the amount returns to zero.
	AddToBalance(ctx context.Context, groupID, fromUserID, toUserID uuid.UUID, currency string, delta decimal.Decimal) error

	// GroupBalances returns all nonzero canonical rows for a group.
	GroupBalances(ctx context.Context, groupID uuid.UUID) ([]*BalanceEntry, error)

	// PairBalance returns the canonical row for a pair, or nil.
	PairBalance(ctx context.Context, groupID, fromUserID, toUserID uuid.UUID, currency string) (*BalanceEntry, error)

	// UserBalances returns nonzero rows across all groups where the user
	// appears on either side.
	UserBalances(ctx context.Context, userID uuid.UUID) ([]*BalanceEntry, error)

	// RecordTransaction appends one audit row.
	RecordTransaction(ctx context.Context, tx *Transaction) error

	// TransactionsByGroup returns a group's audit rows, newest first.
	TransactionsByGroup(ctx context.Context, groupID uuid.UUID) ([]*Transaction, error)
}
