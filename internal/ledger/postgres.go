package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostgresRepository is the Postgres-backed Repository implementation.
// The upsert makes each balance adjustment an atomic read-modify-write
// on the database side, so concurrent appliers for different groups
// never need to coordinate here.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new Postgres-backed repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AddToBalance adds delta to the canonical row and clears it on zero
func (r *PostgresRepository) AddToBalance(ctx context.Context, groupID, fromUserID, toUserID uuid.UUID, currency string, delta decimal.Decimal) error {
	query := `
		INSERT INTO balances (group_id, from_user_id, to_user_id, currency, amount, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (group_id, from_user_id, to_user_id, currency)
		DO UPDATE SET amount = balances.amount + EXCLUDED.amount, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, groupID, fromUserID, toUserID, currency, delta); err != nil {
		return fmt.Errorf("failed to apply balance delta: %w", err)
	}

	cleanup := `
		DELETE FROM balances
		WHERE group_id = $1 AND from_user_id = $2 AND to_user_id = $3 AND currency = $4 AND amount = 0
	`
	if _, err := r.db.ExecContext(ctx, cleanup, groupID, fromUserID, toUserID, currency); err != nil {
		return fmt.Errorf("failed to clear zero balance: %w", err)
	}

	return nil
}

// GroupBalances returns all nonzero rows for a group
func (r *PostgresRepository) GroupBalances(ctx context.Context, groupID uuid.UUID) ([]*BalanceEntry, error) {
	query := `
		SELECT group_id, from_user_id, to_user_id, amount, currency, updated_at
		FROM balances
		WHERE group_id = $1 AND amount <> 0
		ORDER BY from_user_id, to_user_id, currency
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group balances: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// PairBalance returns the canonical row for a pair, or nil
func (r *PostgresRepository) PairBalance(ctx context.Context, groupID, fromUserID, toUserID uuid.UUID, currency string) (*BalanceEntry, error) {
	query := `
		SELECT group_id, from_user_id, to_user_id, amount, currency, updated_at
		FROM balances
		WHERE group_id = $1 AND from_user_id = $2 AND to_user_id = $3 AND currency = $4
	`

	entry := &BalanceEntry{}
	err := r.db.QueryRowContext(ctx, query, groupID, fromUserID, toUserID, currency).Scan(
		&entry.GroupID,
		&entry.FromUserID,
		&entry.ToUserID,
		&entry.Amount,
		&entry.Currency,
		&entry.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pair balance: %w", err)
	}

	return entry, nil
}

// UserBalances returns nonzero rows across all groups involving the user
func (r *PostgresRepository) UserBalances(ctx context.Context, userID uuid.UUID) ([]*BalanceEntry, error) {
	query := `
		SELECT group_id, from_user_id, to_user_id, amount, currency, updated_at
		FROM balances
		WHERE (from_user_id = $1 OR to_user_id = $1) AND amount <> 0
		ORDER BY group_id, from_user_id, to_user_id, currency
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user balances: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// RecordTransaction appends one audit row
func (r *PostgresRepository) RecordTransaction(ctx context.Context, tx *Transaction) error {
	query := `
		INSERT INTO balance_transactions (group_id, from_user_id, to_user_id, amount, currency, kind, reference_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.GroupID, tx.FromUserID, tx.ToUserID, tx.Amount, tx.Currency, tx.Kind, tx.ReferenceID, tx.Description)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	return nil
}

// TransactionsByGroup returns a group's audit rows, newest first
func (r *PostgresRepository) TransactionsByGroup(ctx context.Context, groupID uuid.UUID) ([]*Transaction, error) {
	query := `
		SELECT id, group_id, from_user_id, to_user_id, amount, currency, kind, reference_id, description, created_at
		FROM balance_transactions
		WHERE group_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		tx := &Transaction{}
		if err := rows.Scan(
			&tx.ID, &tx.GroupID, &tx.FromUserID, &tx.ToUserID,
			&tx.Amount, &tx.Currency, &tx.Kind, &tx.ReferenceID,
			&tx.Description, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func scanEntries(rows *sql.Rows) ([]*BalanceEntry, error) {
	var entries []*BalanceEntry
	for rows.Next() {
		entry := &BalanceEntry{}
		if err := rows.Scan(
			&entry.GroupID,
			&entry.FromUserID,
			&entry.ToUserID,
			&entry.Amount,
			&entry.Currency,
			&entry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan balance entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
