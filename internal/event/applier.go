package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fkhayef/splitter/internal/expense/split"
	"github.com/fkhayef/splitter/internal/ledger"
)

// Applier turns domain events into ledger deltas, effectively exactly
// once. Events for the same group are applied under a per-group lock;
// different groups proceed in parallel. Share computation is pure and
// happens before the lock is taken, so a validation failure never
// leaves a partially applied delta set.
type Applier struct {
	ledger  *ledger.Service
	factory *split.Factory
	applied AppliedStore
	log     *slog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewApplier creates a new event applier
func NewApplier(ledgerSvc *ledger.Service, factory *split.Factory, applied AppliedStore) *Applier {
	return &Applier{
		ledger:  ledgerSvc,
		factory: factory,
		applied: applied,
		log:     slog.Default(),
		locks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

// groupLock returns the mutex serializing ledger mutation for a group
func (a *Applier) groupLock(groupID uuid.UUID) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[groupID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[groupID] = lock
	}
	return lock
}

// Apply dispatches a typed event to its handler
func (a *Applier) Apply(ctx context.Context, ev any) error {
	switch e := ev.(type) {
	case ExpenseCreated:
		return a.ApplyExpenseCreated(ctx, e)
	case ExpenseDeleted:
		return a.ApplyExpenseDeleted(ctx, e)
	case SettlementConfirmed:
		return a.ApplySettlementConfirmed(ctx, e)
	default:
		return fmt.Errorf("unknown event type %T", ev)
	}
}

// ApplyExpenseCreated computes the expense's shares and applies one
// delta per non-payer participant: the participant's debt to the
// payer grows by their share.
func (a *Applier) ApplyExpenseCreated(ctx context.Context, ev ExpenseCreated) error {
	shares, err := a.factory.Compute(ev.SplitType, ev.TotalAmount, ev.Participants)
	if err != nil {
		return fmt.Errorf("expense %s rejected: %w", ev.ExpenseID, err)
	}

	deltas := make([]ledger.Delta, 0, len(shares))
	for _, share := range shares {
		if share.UserID == ev.PayerID || share.Amount.IsZero() {
			continue
		}
		deltas = append(deltas, ledger.Delta{
			GroupID:     ev.GroupID,
			FromUserID:  share.UserID,
			ToUserID:    ev.PayerID,
			Amount:      share.Amount,
			Currency:    ev.Currency,
			Kind:        ledger.TransactionKindExpense,
			ReferenceID: ev.ExpenseID,
			Description: ev.Description,
		})
	}

	return a.applyOnce(ctx, ev.GroupID, ev.DedupKey(), deltas)
}

// ApplyExpenseDeleted replays the exact negation of the deltas the
// creation applied, from the shares stored on the event. It refuses
// to run before the matching creation has been applied.
func (a *Applier) ApplyExpenseDeleted(ctx context.Context, ev ExpenseDeleted) error {
	created, err := a.applied.Applied(ctx, ev.CreatedKey())
	if err != nil {
		return fmt.Errorf("failed to check expense creation marker: %w", err)
	}
	if !created {
		return &OutOfOrderEventError{Key: ev.DedupKey(), Requires: ev.CreatedKey()}
	}

	deltas := make([]ledger.Delta, 0, len(ev.Shares))
	for _, share := range ev.Shares {
		if share.UserID == ev.PayerID || share.Amount.IsZero() {
			continue
		}
		deltas = append(deltas, ledger.Delta{
			GroupID:     ev.GroupID,
			FromUserID:  share.UserID,
			ToUserID:    ev.PayerID,
			Amount:      share.Amount.Neg(),
			Currency:    ev.Currency,
			Kind:        ledger.TransactionKindExpense,
			ReferenceID: ev.ExpenseID,
			Description: "expense deleted",
		})
	}

	return a.applyOnce(ctx, ev.GroupID, ev.DedupKey(), deltas)
}

// ApplySettlementConfirmed reduces the payer's debt to the recipient
// by the settlement amount: a delta of -amount in the direction
// recipient to payer, canonicalized like any other.
func (a *Applier) ApplySettlementConfirmed(ctx context.Context, ev SettlementConfirmed) error {
	delta := ledger.Delta{
		GroupID:     ev.GroupID,
		FromUserID:  ev.ToUserID,
		ToUserID:    ev.FromUserID,
		Amount:      ev.Amount.Neg(),
		Currency:    ev.Currency,
		Kind:        ledger.TransactionKindSettlement,
		ReferenceID: ev.SettlementID,
		Description: "settlement payment",
	}
	return a.applyOnce(ctx, ev.GroupID, ev.DedupKey(), []ledger.Delta{delta})
}

// applyOnce marks the dedup key and applies the delta set under the
// group lock. On a storage failure midway, the already-applied deltas
// are reverted and the key unmarked so redelivery can retry cleanly.
func (a *Applier) applyOnce(ctx context.Context, groupID uuid.UUID, key string, deltas []ledger.Delta) error {
	lock := a.groupLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	if err := a.applied.MarkApplied(ctx, key); err != nil {
		if errors.Is(err, ErrAlreadyApplied) {
			a.log.Debug("duplicate event skipped", "key", key)
			return &DuplicateEventError{Key: key}
		}
		return err
	}

	for i, delta := range deltas {
		if err := a.ledger.ApplyDelta(ctx, delta); err != nil {
			a.revert(ctx, deltas[:i])
			if unmarkErr := a.applied.Unmark(ctx, key); unmarkErr != nil {
				a.log.Error("failed to unmark event after rollback", "key", key, "error", unmarkErr)
			}
			a.log.Error("event application failed", "key", key, "error", err)
			return fmt.Errorf("failed to apply event %s: %w", key, err)
		}
	}

	return nil
}

// revert applies the inverse of each delta, best effort
func (a *Applier) revert(ctx context.Context, applied []ledger.Delta) {
	for i := len(applied) - 1; i >= 0; i-- {
		delta := applied[i]
		delta.Amount = delta.Amount.Neg()
		delta.Description = "rollback"
		if err := a.ledger.ApplyDelta(ctx, delta); err != nil {
			a.log.Error("rollback delta failed", "group_id", delta.GroupID, "error", err)
		}
	}
}
