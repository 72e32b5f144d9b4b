package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	groupID = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	alice   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	bob     = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	carol   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expenseDelta(from, to uuid.UUID, amount string) Delta {
	return Delta{
		GroupID:     groupID,
		FromUserID:  from,
		ToUserID:    to,
		Amount:      dec(amount),
		Currency:    "USD",
		Kind:        TransactionKindExpense,
		ReferenceID: uuid.New(),
	}
}

// groupNets sums each user's position across a group's entries.
// Every user's gain is another's loss, so the total must be zero.
func groupNets(t *testing.T, svc *Service, groupID uuid.UUID) map[uuid.UUID]decimal.Decimal {
	t.Helper()
	entries, err := svc.GetGroupBalances(context.Background(), groupID)
	require.NoError(t, err)

	nets := make(map[uuid.UUID]decimal.Decimal)
	for _, e := range entries {
		nets[e.FromUserID] = nets[e.FromUserID].Sub(e.Amount)
		nets[e.ToUserID] = nets[e.ToUserID].Add(e.Amount)
	}
	return nets
}

func requireZeroSum(t *testing.T, svc *Service, groupID uuid.UUID) {
	t.Helper()
	total := decimal.Zero
	for _, net := range groupNets(t, svc, groupID) {
		total = total.Add(net)
	}
	require.True(t, total.IsZero(), "group nets to %s, want 0", total)
}

func TestApplyDeltaCanonicalizesDirection(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	// bob owes alice, expressed in the non-canonical direction
	require.NoError(t, svc.ApplyDelta(ctx, expenseDelta(bob, alice, "10.00")))
	// alice owes bob a little back
	require.NoError(t, svc.ApplyDelta(ctx, expenseDelta(alice, bob, "4.00")))

	entries, err := svc.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "a pair must never produce two rows")

	// oriented output: bob still owes alice 6
	assert.Equal(t, bob, entries[0].FromUserID)
	assert.Equal(t, alice, entries[0].ToUserID)
	assert.True(t, entries[0].Amount.Equal(dec("6.00")))
}

func TestApplyDeltaRemovesZeroedRows(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.ApplyDelta(ctx, expenseDelta(alice, bob, "25.50")))
	require.NoError(t, svc.ApplyDelta(ctx, expenseDelta(alice, bob, "-25.50")))

	entries, err := svc.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)
	assert.Empty(t, entries, "zeroed rows are logically absent")
}

func TestApplyDeltaRejectsSelfBalance(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	err := svc.ApplyDelta(context.Background(), expenseDelta(alice, alice, "5.00"))
	require.ErrorIs(t, err, ErrSelfBalance)
}

func TestGroupAlwaysNetsToZero(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	deltas := []Delta{
		expenseDelta(alice, bob, "12.34"),
		expenseDelta(bob, carol, "0.01"),
		expenseDelta(carol, alice, "99.99"),
		expenseDelta(bob, alice, "-3.50"),
		expenseDelta(alice, carol, "7.77"),
		expenseDelta(carol, bob, "44.44"),
	}

	for _, d := range deltas {
		require.NoError(t, svc.ApplyDelta(ctx, d))
		requireZeroSum(t, svc, groupID)
	}
}

func TestGetBalanceBetween(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.ApplyDelta(ctx, expenseDelta(bob, alice, "15.00")))

	// from bob's perspective: positive, he owes
	entry, err := svc.GetBalanceBetween(ctx, groupID, bob, alice, "USD")
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(dec("15.00")))

	// from alice's perspective: negative, she is owed
	entry, err = svc.GetBalanceBetween(ctx, groupID, alice, bob, "USD")
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(dec("-15.00")))

	// untouched pair: zero-amount default, not an error
	entry, err = svc.GetBalanceBetween(ctx, groupID, alice, carol, "USD")
	require.NoError(t, err)
	assert.True(t, entry.Amount.IsZero())
	assert.Equal(t, alice, entry.FromUserID)
	assert.Equal(t, carol, entry.ToUserID)

	_, err = svc.GetBalanceBetween(ctx, groupID, alice, alice, "USD")
	require.ErrorIs(t, err, ErrSelfBalance)
}

func TestGetUserBalancesSpansGroups(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	otherGroup := uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	require.NoError(t, svc.ApplyDelta(ctx, expenseDelta(alice, bob, "10.00")))

	d := expenseDelta(carol, alice, "20.00")
	d.GroupID = otherGroup
	require.NoError(t, svc.ApplyDelta(ctx, d))

	entries, err := svc.GetUserBalances(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, e.Amount.IsPositive(), "user balances are oriented positive")
		assert.True(t, e.FromUserID == alice || e.ToUserID == alice)
	}

	entries, err = svc.GetUserBalances(ctx, bob)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, groupID, entries[0].GroupID)
}

func TestCurrenciesKeepSeparateRows(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	usd := expenseDelta(alice, bob, "10.00")
	eur := expenseDelta(alice, bob, "10.00")
	eur.Currency = "EUR"

	require.NoError(t, svc.ApplyDelta(ctx, usd))
	require.NoError(t, svc.ApplyDelta(ctx, eur))

	entries, err := svc.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTransactionJournal(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	first := expenseDelta(alice, bob, "10.00")
	first.Description = "dinner"
	second := Delta{
		GroupID:     groupID,
		FromUserID:  bob,
		ToUserID:    alice,
		Amount:      dec("-4.00"),
		Currency:    "USD",
		Kind:        TransactionKindSettlement,
		ReferenceID: uuid.New(),
	}

	require.NoError(t, svc.ApplyDelta(ctx, first))
	require.NoError(t, svc.ApplyDelta(ctx, second))

	transactions, err := svc.ListTransactions(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	// newest first; journal keeps the caller's direction and sign
	assert.Equal(t, TransactionKindSettlement, transactions[0].Kind)
	assert.True(t, transactions[0].Amount.Equal(dec("-4.00")))
	assert.Equal(t, TransactionKindExpense, transactions[1].Kind)
	assert.Equal(t, "dinner", transactions[1].Description)
}

func TestZeroDeltaTouchesNothing(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.ApplyDelta(ctx, expenseDelta(alice, bob, "0")))

	entries, err := svc.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	transactions, err := svc.ListTransactions(ctx, groupID)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestGetGroupSummary(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.ApplyDelta(ctx, expenseDelta(alice, bob, "10.00")))
	require.NoError(t, svc.ApplyDelta(ctx, expenseDelta(bob, carol, "10.00")))

	summary, err := svc.GetGroupSummary(ctx, groupID)
	require.NoError(t, err)
	assert.Len(t, summary.Balances, 2)
	require.Len(t, summary.SimplifiedDebts, 1)
	assert.Equal(t, alice, summary.SimplifiedDebts[0].FromUserID)
	assert.Equal(t, carol, summary.SimplifiedDebts[0].ToUserID)
	assert.Equal(t, "USD", summary.SimplifiedDebts[0].Currency)
}
