package split

import "github.com/shopspring/decimal"

// SharesStrategy divides the expense by integer unit weights.
// Every participant except the last gets the floored per-unit
// amount times their weight; the last participant receives the
// exact remainder.
type SharesStrategy struct{}

// Type returns the split type identifier
func (s *SharesStrategy) Type() Type {
	return TypeShares
}

// Validate checks if the inputs are valid for a unit-weighted split
func (s *SharesStrategy) Validate(total decimal.Decimal, participants []Participant) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	var totalUnits int64
	for _, p := range participants {
		if p.Units == nil {
			return ErrMissingUnits
		}
		if *p.Units < 0 {
			return ErrNegativeUnits
		}
		totalUnits += *p.Units
	}

	if totalUnits == 0 {
		return ErrZeroTotalUnits
	}

	return nil
}

// Calculate divides the total amount proportionally to unit weights
func (s *SharesStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	var totalUnits int64
	for _, p := range participants {
		totalUnits += *p.Units
	}

	unitCount := decimal.NewFromInt(totalUnits)
	perUnit := total.Div(unitCount).RoundDown(Scale)

	shares := make([]Share, len(participants))
	allocated := decimal.Zero

	for i, p := range participants {
		var amount decimal.Decimal
		if i == len(participants)-1 {
			// Last participant absorbs the rounding drift
			amount = total.Sub(allocated)
		} else {
			amount = perUnit.Mul(decimal.NewFromInt(*p.Units))
			allocated = allocated.Add(amount)
		}

		percentage := decimal.NewFromInt(*p.Units).DivRound(unitCount, Scale+2).Mul(hundred).Round(Scale)
		shares[i] = Share{
			UserID:     p.UserID,
			Amount:     amount,
			Percentage: percentage,
			Units:      *p.Units,
		}
	}

	return shares, nil
}
