package split

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	bob   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	carol = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int64) *int64 {
	return &n
}

func sumShares(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []Participant
		wantAmounts  []string
		wantErr      error
	}{
		{
			name:         "divisible total",
			total:        "90.00",
			participants: []Participant{{UserID: alice}, {UserID: bob}, {UserID: carol}},
			wantAmounts:  []string{"30", "30", "30"},
		},
		{
			name:         "residual cent goes to first participant",
			total:        "100.00",
			participants: []Participant{{UserID: alice}, {UserID: bob}, {UserID: carol}},
			wantAmounts:  []string{"33.34", "33.33", "33.33"},
		},
		{
			name:         "two cent residual",
			total:        "0.20",
			participants: []Participant{{UserID: alice}, {UserID: bob}, {UserID: carol}},
			wantAmounts:  []string{"0.08", "0.06", "0.06"},
		},
		{
			name:         "single participant gets everything",
			total:        "19.99",
			participants: []Participant{{UserID: alice}},
			wantAmounts:  []string{"19.99"},
		},
		{
			name:    "no participants",
			total:   "10.00",
			wantErr: ErrNoParticipants,
		},
		{
			name:         "zero total",
			total:        "0",
			participants: []Participant{{UserID: alice}},
			wantErr:      ErrNonPositiveTotal,
		},
	}

	strategy := &EqualStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := strategy.Calculate(dec(tt.total), tt.participants)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, shares, len(tt.wantAmounts))
			for i, want := range tt.wantAmounts {
				assert.True(t, shares[i].Amount.Equal(dec(want)),
					"share %d = %s, want %s", i, shares[i].Amount, want)
			}
			assert.True(t, sumShares(shares).Equal(dec(tt.total)))
		})
	}
}

func TestExactSplit(t *testing.T) {
	strategy := &ExactStrategy{}

	t.Run("amounts pass through unchanged", func(t *testing.T) {
		shares, err := strategy.Calculate(dec("50.00"), []Participant{
			{UserID: alice, Amount: decPtr("30.00")},
			{UserID: bob, Amount: decPtr("20.00")},
		})
		require.NoError(t, err)
		assert.True(t, shares[0].Amount.Equal(dec("30.00")))
		assert.True(t, shares[1].Amount.Equal(dec("20.00")))
		assert.True(t, shares[0].Percentage.Equal(dec("60")))
		assert.True(t, shares[1].Percentage.Equal(dec("40")))
	})

	t.Run("sum mismatch is rejected, never corrected", func(t *testing.T) {
		_, err := strategy.Calculate(dec("50.00"), []Participant{
			{UserID: alice, Amount: decPtr("30.00")},
			{UserID: bob, Amount: decPtr("20.01")},
		})
		require.ErrorIs(t, err, ErrExactSumMismatch)
	})

	t.Run("off by a cent is still a mismatch", func(t *testing.T) {
		_, err := strategy.Calculate(dec("50.00"), []Participant{
			{UserID: alice, Amount: decPtr("29.99")},
			{UserID: bob, Amount: decPtr("20.00")},
		})
		require.ErrorIs(t, err, ErrExactSumMismatch)
	})

	t.Run("missing amount", func(t *testing.T) {
		_, err := strategy.Calculate(dec("50.00"), []Participant{
			{UserID: alice, Amount: decPtr("50.00")},
			{UserID: bob},
		})
		require.ErrorIs(t, err, ErrMissingExactAmount)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := strategy.Calculate(dec("50.00"), []Participant{
			{UserID: alice, Amount: decPtr("60.00")},
			{UserID: bob, Amount: decPtr("-10.00")},
		})
		require.ErrorIs(t, err, ErrNegativeAmount)
	})
}

func TestPercentageSplit(t *testing.T) {
	strategy := &PercentageStrategy{}

	t.Run("last participant absorbs rounding drift", func(t *testing.T) {
		shares, err := strategy.Calculate(dec("10.00"), []Participant{
			{UserID: alice, Percentage: decPtr("33")},
			{UserID: bob, Percentage: decPtr("33")},
			{UserID: carol, Percentage: decPtr("34")},
		})
		require.NoError(t, err)
		assert.True(t, shares[0].Amount.Equal(dec("3.30")))
		assert.True(t, shares[1].Amount.Equal(dec("3.30")))
		assert.True(t, shares[2].Amount.Equal(dec("3.40")))
		assert.True(t, sumShares(shares).Equal(dec("10.00")))
	})

	t.Run("adversarial thirds always reconcile", func(t *testing.T) {
		shares, err := strategy.Calculate(dec("0.10"), []Participant{
			{UserID: alice, Percentage: decPtr("33.33")},
			{UserID: bob, Percentage: decPtr("33.33")},
			{UserID: carol, Percentage: decPtr("33.34")},
		})
		require.NoError(t, err)
		assert.True(t, sumShares(shares).Equal(dec("0.10")))
	})

	t.Run("percentages must sum to exactly 100", func(t *testing.T) {
		_, err := strategy.Calculate(dec("10.00"), []Participant{
			{UserID: alice, Percentage: decPtr("50")},
			{UserID: bob, Percentage: decPtr("49.99")},
		})
		require.ErrorIs(t, err, ErrPercentageSum)
	})

	t.Run("percentage out of range", func(t *testing.T) {
		_, err := strategy.Calculate(dec("10.00"), []Participant{
			{UserID: alice, Percentage: decPtr("150")},
			{UserID: bob, Percentage: decPtr("-50")},
		})
		require.ErrorIs(t, err, ErrPercentageOutOfRange)
	})

	t.Run("missing percentage", func(t *testing.T) {
		_, err := strategy.Calculate(dec("10.00"), []Participant{
			{UserID: alice, Percentage: decPtr("100")},
			{UserID: bob},
		})
		require.ErrorIs(t, err, ErrMissingPercentage)
	})
}

func TestSharesSplit(t *testing.T) {
	strategy := &SharesStrategy{}

	t.Run("weighted allocation with remainder on last", func(t *testing.T) {
		shares, err := strategy.Calculate(dec("100.00"), []Participant{
			{UserID: alice, Units: intPtr(2)},
			{UserID: bob, Units: intPtr(1)},
		})
		require.NoError(t, err)
		// per-unit 33.33 floored: alice 66.66, bob takes the rest
		assert.True(t, shares[0].Amount.Equal(dec("66.66")))
		assert.True(t, shares[1].Amount.Equal(dec("33.34")))
		assert.True(t, sumShares(shares).Equal(dec("100.00")))
		assert.Equal(t, int64(2), shares[0].Units)
	})

	t.Run("zero weight participant owes nothing unless last", func(t *testing.T) {
		shares, err := strategy.Calculate(dec("30.00"), []Participant{
			{UserID: alice, Units: intPtr(0)},
			{UserID: bob, Units: intPtr(3)},
		})
		require.NoError(t, err)
		assert.True(t, shares[0].Amount.IsZero())
		assert.True(t, shares[1].Amount.Equal(dec("30.00")))
	})

	t.Run("all zero weights rejected", func(t *testing.T) {
		_, err := strategy.Calculate(dec("30.00"), []Participant{
			{UserID: alice, Units: intPtr(0)},
			{UserID: bob, Units: intPtr(0)},
		})
		require.ErrorIs(t, err, ErrZeroTotalUnits)
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		_, err := strategy.Calculate(dec("30.00"), []Participant{
			{UserID: alice, Units: intPtr(-1)},
			{UserID: bob, Units: intPtr(2)},
		})
		require.ErrorIs(t, err, ErrNegativeUnits)
	})

	t.Run("missing units", func(t *testing.T) {
		_, err := strategy.Calculate(dec("30.00"), []Participant{
			{UserID: alice, Units: intPtr(1)},
			{UserID: bob},
		})
		require.ErrorIs(t, err, ErrMissingUnits)
	})
}

func TestFactory(t *testing.T) {
	factory := NewFactory()

	for _, splitType := range []Type{TypeEqual, TypeExact, TypePercentage, TypeShares} {
		strategy, err := factory.Create(splitType)
		require.NoError(t, err)
		assert.Equal(t, splitType, strategy.Type())
	}

	_, err := factory.Create(Type("RANDOM"))
	require.Error(t, err)
}

func TestSumInvariantAcrossStrategies(t *testing.T) {
	factory := NewFactory()

	cases := []struct {
		splitType    Type
		total        string
		participants []Participant
	}{
		{TypeEqual, "73.57", []Participant{{UserID: alice}, {UserID: bob}, {UserID: carol}}},
		{TypeEqual, "0.01", []Participant{{UserID: alice}, {UserID: bob}}},
		{TypePercentage, "99.99", []Participant{
			{UserID: alice, Percentage: decPtr("33")},
			{UserID: bob, Percentage: decPtr("33")},
			{UserID: carol, Percentage: decPtr("34")},
		}},
		{TypeShares, "17.77", []Participant{
			{UserID: alice, Units: intPtr(3)},
			{UserID: bob, Units: intPtr(5)},
			{UserID: carol, Units: intPtr(7)},
		}},
		{TypeExact, "5.00", []Participant{
			{UserID: alice, Amount: decPtr("1.11")},
			{UserID: bob, Amount: decPtr("3.89")},
		}},
	}

	for _, tc := range cases {
		shares, err := factory.Compute(tc.splitType, dec(tc.total), tc.participants)
		require.NoError(t, err, "%s %s", tc.splitType, tc.total)
		assert.True(t, sumShares(shares).Equal(dec(tc.total)),
			"%s of %s: shares sum to %s", tc.splitType, tc.total, sumShares(shares))
	}
}

func TestDeterministicForFixedOrder(t *testing.T) {
	strategy := &EqualStrategy{}
	participants := []Participant{{UserID: carol}, {UserID: alice}, {UserID: bob}}

	first, err := strategy.Calculate(dec("10.00"), participants)
	require.NoError(t, err)
	second, err := strategy.Calculate(dec("10.00"), participants)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].UserID, second[i].UserID)
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
	}
	// remainder goes to position zero, whoever that is
	assert.Equal(t, carol, first[0].UserID)
	assert.True(t, first[0].Amount.Equal(dec("3.34")))
}
