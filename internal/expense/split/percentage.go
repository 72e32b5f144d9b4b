package split

import "github.com/shopspring/decimal"

// PercentageStrategy divides the expense based on a percentage per
// participant. The percentages must sum to exactly 100. Every
// participant except the last gets their percentage of the total
// rounded to the minor unit; the last participant receives whatever
// remains, so the allocation always reconciles exactly regardless
// of rounding drift.
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() Type {
	return TypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(total decimal.Decimal, participants []Participant) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(hundred) {
			return ErrPercentageOutOfRange
		}
		sum = sum.Add(*p.Percentage)
	}

	if !sum.Equal(hundred) {
		return ErrPercentageSum
	}

	return nil
}

// Calculate divides the total amount based on each participant's percentage
func (s *PercentageStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	allocated := decimal.Zero

	for i, p := range participants {
		var amount decimal.Decimal
		if i == len(participants)-1 {
			// Last participant absorbs the rounding drift
			amount = total.Sub(allocated)
		} else {
			amount = total.Mul(*p.Percentage).DivRound(hundred, Scale)
			allocated = allocated.Add(amount)
		}

		shares[i] = Share{
			UserID:     p.UserID,
			Amount:     amount,
			Percentage: *p.Percentage,
		}
	}

	return shares, nil
}
