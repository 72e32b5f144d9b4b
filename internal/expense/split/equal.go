package split

import "github.com/shopspring/decimal"

// EqualStrategy divides the expense equally among all participants.
// The base share is the total divided by the participant count,
// floored to the minor unit; whatever residual remains after
// flooring is added entirely to the first participant in order.
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() Type {
	return TypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(total decimal.Decimal, participants []Participant) error {
	return validateCommon(total, participants)
}

// Calculate divides the total amount evenly among all participants
func (s *EqualStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	count := decimal.NewFromInt(int64(len(participants)))
	base := total.Div(count).RoundDown(Scale)
	residual := total.Sub(base.Mul(count))
	percentage := hundred.DivRound(count, Scale)

	shares := make([]Share, len(participants))
	for i, p := range participants {
		amount := base
		if i == 0 {
			amount = amount.Add(residual)
		}
		shares[i] = Share{
			UserID:     p.UserID,
			Amount:     amount,
			Percentage: percentage,
			Units:      1,
		}
	}

	return shares, nil
}
