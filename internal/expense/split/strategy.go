package split

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type defines the type of split strategy
type Type string

const (
	TypeEqual      Type = "EQUAL"
	TypeExact      Type = "EXACT"
	TypePercentage Type = "PERCENTAGE"
	TypeShares     Type = "SHARES"
)

// Scale is the minor-unit precision used for all share amounts.
// Two decimal places for USD-like currencies.
const Scale = 2

// Participant represents one member of a split with optional
// per-type allocation values. Order matters: remainder policies
// are applied by position in the slice, never by map iteration.
type Participant struct {
	UserID     uuid.UUID        `json:"user_id"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`     // For EXACT split
	Percentage *decimal.Decimal `json:"percentage,omitempty"` // For PERCENTAGE split
	Units      *int64           `json:"units,omitempty"`      // For SHARES split
}

// Share is the calculated outcome for a single participant.
// Percentage is informational only; Amount is authoritative.
type Share struct {
	UserID     uuid.UUID       `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Units      int64           `json:"units,omitempty"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes a share for every participant, in input order.
	// The sum of the returned amounts always equals total exactly.
	Calculate(total decimal.Decimal, participants []Participant) ([]Share, error)

	// Type returns the type identifier for this strategy
	Type() Type

	// Validate checks if the inputs are valid for this strategy
	Validate(total decimal.Decimal, participants []Participant) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType Type) (Strategy, error) {
	switch splitType {
	case TypeEqual:
		return &EqualStrategy{}, nil
	case TypeExact:
		return &ExactStrategy{}, nil
	case TypePercentage:
		return &PercentageStrategy{}, nil
	case TypeShares:
		return &SharesStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split type: %s", splitType)
	}
}

// Compute is a convenience wrapper that resolves the strategy and
// calculates shares in one call.
func (f *Factory) Compute(splitType Type, total decimal.Decimal, participants []Participant) ([]Share, error) {
	strategy, err := f.Create(splitType)
	if err != nil {
		return nil, err
	}
	return strategy.Calculate(total, participants)
}

// ValidationError identifies which split validation check failed.
// Inputs are never clamped or renormalized; a failed check always
// surfaces as one of these.
type ValidationError struct {
	Check   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrNoParticipants       = &ValidationError{Check: "participants", Message: "at least one participant is required"}
	ErrNonPositiveTotal     = &ValidationError{Check: "total", Message: "total amount must be positive"}
	ErrNegativeAmount       = &ValidationError{Check: "amount", Message: "amounts cannot be negative"}
	ErrMissingExactAmount   = &ValidationError{Check: "amount", Message: "exact amount required for all participants"}
	ErrExactSumMismatch     = &ValidationError{Check: "amount_sum", Message: "exact amounts must sum to total amount"}
	ErrMissingPercentage    = &ValidationError{Check: "percentage", Message: "percentage value required for all participants"}
	ErrPercentageOutOfRange = &ValidationError{Check: "percentage", Message: "percentage must be between 0 and 100"}
	ErrPercentageSum        = &ValidationError{Check: "percentage_sum", Message: "percentages must sum to 100"}
	ErrMissingUnits         = &ValidationError{Check: "units", Message: "share units required for all participants"}
	ErrNegativeUnits        = &ValidationError{Check: "units", Message: "share units cannot be negative"}
	ErrZeroTotalUnits       = &ValidationError{Check: "units_sum", Message: "total share units must be greater than zero"}
)

var hundred = decimal.NewFromInt(100)

// validateCommon covers the checks shared by every strategy
func validateCommon(total decimal.Decimal, participants []Participant) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if !total.IsPositive() {
		return ErrNonPositiveTotal
	}
	return nil
}
