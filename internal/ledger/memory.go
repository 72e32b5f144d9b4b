package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type pairKey struct {
	from     uuid.UUID
	to       uuid.UUID
	currency string
}

// MemoryRepository is the in-memory Repository implementation.
// It backs tests and single-process deployments.
type MemoryRepository struct {
	mu           sync.RWMutex
	balances     map[uuid.UUID]map[pairKey]*BalanceEntry
	transactions map[uuid.UUID][]*Transaction
	nextTxID     int64
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		balances:     make(map[uuid.UUID]map[pairKey]*BalanceEntry),
		transactions: make(map[uuid.UUID][]*Transaction),
	}
}

// AddToBalance adds delta to the canonical row under the repository lock
func (r *MemoryRepository) AddToBalance(ctx context.Context, groupID, fromUserID, toUserID uuid.UUID, currency string, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.balances[groupID]
	if !ok {
		group = make(map[pairKey]*BalanceEntry)
		r.balances[groupID] = group
	}

	key := pairKey{from: fromUserID, to: toUserID, currency: currency}
	entry, ok := group[key]
	if !ok {
		entry = &BalanceEntry{
			GroupID:    groupID,
			FromUserID: fromUserID,
			ToUserID:   toUserID,
			Amount:     decimal.Zero,
			Currency:   currency,
		}
		group[key] = entry
	}

	entry.Amount = entry.Amount.Add(delta)
	entry.UpdatedAt = time.Now()

	if entry.Amount.IsZero() {
		delete(group, key)
	}

	return nil
}

// GroupBalances returns copies of all nonzero rows for a group
func (r *MemoryRepository) GroupBalances(ctx context.Context, groupID uuid.UUID) ([]*BalanceEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group := r.balances[groupID]
	entries := make([]*BalanceEntry, 0, len(group))
	for _, entry := range group {
		copied := *entry
		entries = append(entries, &copied)
	}

	sortEntries(entries)
	return entries, nil
}

// PairBalance returns a copy of the canonical row for a pair, or nil
func (r *MemoryRepository) PairBalance(ctx context.Context, groupID, fromUserID, toUserID uuid.UUID, currency string) (*BalanceEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.balances[groupID][pairKey{from: fromUserID, to: toUserID, currency: currency}]
	if !ok {
		return nil, nil
	}

	copied := *entry
	return &copied, nil
}

// UserBalances returns copies of rows across all groups involving the user
func (r *MemoryRepository) UserBalances(ctx context.Context, userID uuid.UUID) ([]*BalanceEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*BalanceEntry
	for _, group := range r.balances {
		for _, entry := range group {
			if entry.FromUserID == userID || entry.ToUserID == userID {
				copied := *entry
				entries = append(entries, &copied)
			}
		}
	}

	sortEntries(entries)
	return entries, nil
}

// RecordTransaction appends one audit row
func (r *MemoryRepository) RecordTransaction(ctx context.Context, tx *Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextTxID++
	copied := *tx
	copied.ID = r.nextTxID
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	r.transactions[tx.GroupID] = append(r.transactions[tx.GroupID], &copied)
	return nil
}

// sortEntries gives map-backed results a stable order
func sortEntries(entries []*BalanceEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.GroupID != b.GroupID {
			return strings.Compare(a.GroupID.String(), b.GroupID.String()) < 0
		}
		if a.FromUserID != b.FromUserID {
			return strings.Compare(a.FromUserID.String(), b.FromUserID.String()) < 0
		}
		if a.ToUserID != b.ToUserID {
			return strings.Compare(a.ToUserID.String(), b.ToUserID.String()) < 0
		}
		return a.Currency < b.Currency
	})
}

// TransactionsByGroup returns a group's audit rows, newest first
func (r *MemoryRepository) TransactionsByGroup(ctx context.Context, groupID uuid.UUID) ([]*Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.transactions[groupID]
	out := make([]*Transaction, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		copied := *rows[i]
		out = append(out, &copied)
	}
	return out, nil
}
