package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresRepository is the Postgres-backed Repository implementation
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new Postgres-backed repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const settlementColumns = `id, group_id, from_user_id, to_user_id, amount, currency, status,
	payment_method, settlement_date, notes, created_by, confirmed_by, created_at, updated_at`

// Create inserts a new settlement
func (r *PostgresRepository) Create(ctx context.Context, s *Settlement) error {
	query := `
		INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount, currency, status,
			payment_method, settlement_date, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.GroupID, s.FromUserID, s.ToUserID, s.Amount, s.Currency, s.Status,
		s.PaymentMethod, s.SettlementDate, s.Notes, s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}

	return nil
}

// GetByID retrieves a settlement by its ID
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE id = $1`

	s, err := scanSettlement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return s, nil
}

// Update persists the mutable fields of an existing settlement
func (r *PostgresRepository) Update(ctx context.Context, s *Settlement) error {
	query := `
		UPDATE settlements
		SET status = $2, notes = $3, confirmed_by = $4, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, s.ID, s.Status, s.Notes, s.ConfirmedBy); err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}

	return nil
}

// ListByGroup returns a group's settlements, newest first
func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE group_id = $1 ORDER BY created_at DESC`
	return r.queryList(ctx, query, groupID)
}

// ListByUser returns settlements where the user is payer or recipient
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements
		WHERE from_user_id = $1 OR to_user_id = $1 ORDER BY created_at DESC`
	return r.queryList(ctx, query, userID)
}

// ListPendingForUser returns PENDING settlements awaiting the user
func (r *PostgresRepository) ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]*Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements
		WHERE to_user_id = $1 AND status = $2 ORDER BY created_at DESC`
	return r.queryList(ctx, query, userID, StatusPending)
}

func (r *PostgresRepository) queryList(ctx context.Context, query string, args ...interface{}) ([]*Settlement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}

	return settlements, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSettlement(row rowScanner) (*Settlement, error) {
	s := &Settlement{}
	var notes sql.NullString
	var confirmedBy uuid.NullUUID

	err := row.Scan(
		&s.ID, &s.GroupID, &s.FromUserID, &s.ToUserID, &s.Amount, &s.Currency, &s.Status,
		&s.PaymentMethod, &s.SettlementDate, &notes, &s.CreatedBy, &confirmedBy,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Notes = notes.String
	if confirmedBy.Valid {
		id := confirmedBy.UUID
		s.ConfirmedBy = &id
	}

	return s, nil
}
