package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrSelfBalance = errors.New("cannot hold a balance with yourself")
)

// Service owns the directed pairwise-balance ledger. All mutation goes
// through ApplyDelta; the zero-sum invariant holds structurally because
// every delta moves the same amount out of one user and into another.
type Service struct {
	repo Repository
}

// NewService creates a new ledger service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// canonicalize fixes the stored direction of a pair: the user with the
// smaller id is always the "from" side. A delta expressed in the
// opposite direction is negated before being added, so two rows for the
// same pair can never coexist.
func canonicalize(fromUserID, toUserID uuid.UUID, amount decimal.Decimal) (uuid.UUID, uuid.UUID, decimal.Decimal) {
	if strings.Compare(fromUserID.String(), toUserID.String()) > 0 {
		return toUserID, fromUserID, amount.Neg()
	}
	return fromUserID, toUserID, amount
}

// ApplyDelta applies one signed balance adjustment and records it in
// the transaction journal. Zero deltas are dropped without touching
// storage.
func (s *Service) ApplyDelta(ctx context.Context, d Delta) error {
	if d.FromUserID == d.ToUserID {
		return ErrSelfBalance
	}
	if d.Amount.IsZero() {
		return nil
	}

	from, to, amount := canonicalize(d.FromUserID, d.ToUserID, d.Amount)
	if err := s.repo.AddToBalance(ctx, d.GroupID, from, to, d.Currency, amount); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	// The journal keeps the caller's direction, not the canonical one
	tx := &Transaction{
		GroupID:     d.GroupID,
		FromUserID:  d.FromUserID,
		ToUserID:    d.ToUserID,
		Amount:      d.Amount,
		Currency:    d.Currency,
		Kind:        d.Kind,
		ReferenceID: d.ReferenceID,
		Description: d.Description,
	}
	if err := s.repo.RecordTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to journal delta: %w", err)
	}

	return nil
}

// GetGroupBalances returns all open debts in a group, oriented so the
// amount is always positive and FromUserID is the actual debtor.
func (s *Service) GetGroupBalances(ctx context.Context, groupID uuid.UUID) ([]*BalanceEntry, error) {
	entries, err := s.repo.GroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for i, entry := range entries {
		entries[i] = orient(entry)
	}
	return entries, nil
}

// GetBalanceBetween returns the balance between two users from userA's
// perspective: a positive amount means userA owes userB. A pair with no
// open debt yields a zero-amount entry.
func (s *Service) GetBalanceBetween(ctx context.Context, groupID, userA, userB uuid.UUID, currency string) (*BalanceEntry, error) {
	if userA == userB {
		return nil, ErrSelfBalance
	}

	from, to, _ := canonicalize(userA, userB, decimal.Zero)
	entry, err := s.repo.PairBalance(ctx, groupID, from, to, currency)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &BalanceEntry{
			GroupID:    groupID,
			FromUserID: userA,
			ToUserID:   userB,
			Amount:     decimal.Zero,
			Currency:   currency,
			UpdatedAt:  time.Time{},
		}, nil
	}

	amount := entry.Amount
	if entry.FromUserID != userA {
		amount = amount.Neg()
	}
	return &BalanceEntry{
		GroupID:    groupID,
		FromUserID: userA,
		ToUserID:   userB,
		Amount:     amount,
		Currency:   entry.Currency,
		UpdatedAt:  entry.UpdatedAt,
	}, nil
}

// GetUserBalances returns the user's open debts across all groups,
// oriented so the amount is always positive.
func (s *Service) GetUserBalances(ctx context.Context, userID uuid.UUID) ([]*BalanceEntry, error) {
	entries, err := s.repo.UserBalances(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i, entry := range entries {
		entries[i] = orient(entry)
	}
	return entries, nil
}

// GetSimplifiedDebts computes a reduced payment set that settles a
// group, live from the current nonzero entries. Nothing is cached.
func (s *Service) GetSimplifiedDebts(ctx context.Context, groupID uuid.UUID) ([]SimplifiedDebt, error) {
	entries, err := s.GetGroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return simplifyByCurrency(entries), nil
}

// GetGroupSummary returns a group's balances with their simplification
func (s *Service) GetGroupSummary(ctx context.Context, groupID uuid.UUID) (*GroupBalanceSummary, error) {
	entries, err := s.GetGroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return &GroupBalanceSummary{
		GroupID:         groupID,
		Balances:        entries,
		SimplifiedDebts: simplifyByCurrency(entries),
	}, nil
}

// ListTransactions returns a group's journal, newest first
func (s *Service) ListTransactions(ctx context.Context, groupID uuid.UUID) ([]*Transaction, error) {
	return s.repo.TransactionsByGroup(ctx, groupID)
}

// orient flips a canonical row so the amount is positive and the
// "from" side is the user who actually owes.
func orient(entry *BalanceEntry) *BalanceEntry {
	if !entry.Amount.IsNegative() {
		return entry
	}
	return &BalanceEntry{
		GroupID:    entry.GroupID,
		FromUserID: entry.ToUserID,
		ToUserID:   entry.FromUserID,
		Amount:     entry.Amount.Neg(),
		Currency:   entry.Currency,
		UpdatedAt:  entry.UpdatedAt,
	}
}

// simplifyByCurrency runs the simplifier once per currency present,
// in order of first appearance.
func simplifyByCurrency(entries []*BalanceEntry) []SimplifiedDebt {
	var currencies []string
	byCurrency := make(map[string][]*BalanceEntry)
	for _, entry := range entries {
		if _, ok := byCurrency[entry.Currency]; !ok {
			currencies = append(currencies, entry.Currency)
		}
		byCurrency[entry.Currency] = append(byCurrency[entry.Currency], entry)
	}

	debts := make([]SimplifiedDebt, 0)
	for _, currency := range currencies {
		for _, d := range Simplify(byCurrency[currency]) {
			d.Currency = currency
			debts = append(debts, d)
		}
	}
	return debts
}
