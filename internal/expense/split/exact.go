package split

import "github.com/shopspring/decimal"

// ExactStrategy takes an explicit amount per participant.
// The amounts must sum to the expense total exactly; a mismatch is
// a validation failure, never silently corrected.
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() Type {
	return TypeExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(total decimal.Decimal, participants []Participant) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if p.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		sum = sum.Add(*p.Amount)
	}

	if !sum.Equal(total) {
		return ErrExactSumMismatch
	}

	return nil
}

// Calculate returns the exact amounts specified for each participant
func (s *ExactStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		percentage := p.Amount.DivRound(total, Scale+2).Mul(hundred).Round(Scale)
		shares[i] = Share{
			UserID:     p.UserID,
			Amount:     *p.Amount,
			Percentage: percentage,
		}
	}

	return shares, nil
}
