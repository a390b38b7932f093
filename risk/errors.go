package risk

import (
	"errors"
	"fmt"
)

var (
	ErrIncomplete          = errors.New("required field is empty")
	ErrNotNumeric          = errors.New("not a number")
	ErrInvalidPair         = errors.New("invalid instrument")
	ErrInvalidCurrency     = errors.New("invalid account currency")
	ErrInvalidBalance      = errors.New("balance must not be negative")
	ErrInvalidRisk         = errors.New("risk percent must be within (0, 100]")
	ErrInvalidStopLoss     = errors.New("stop-loss pips must be positive")
	ErrInvalidMarginRatio  = errors.New("margin ratio must not be negative")
	ErrInvalidContractSize = errors.New("contract size must not be negative")
	ErrInvalidCommission   = errors.New("commission must not be negative")
	ErrInvalidTarget       = errors.New("take-profit must not be negative")
	ErrInvalidOverride     = errors.New("custom rate must not be negative")
	ErrNonFinite           = errors.New("calculation produced a non-finite value")
)

// FieldError ties a validation failure to the form field that caused it.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
