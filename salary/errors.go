/*
errors.go - Error types for the salary engine

PURPOSE:
  The engine raises exactly one kind of error: invalid monetary input.
  City-tax lookup problems are never errors to the caller; they are absorbed
  by the professional-tax fallback chain (see professional_tax.go).

ERROR CATEGORIES:
  1. Input errors   - ctc ≤ 0, negative components, fixed CTC below zero
  2. Record errors  - administrative lookups of a city that has no record
                      (only used by stores, never by Calculate)

USAGE:
  breakdown, err := calc.Calculate(ctx, req)
  if errors.Is(err, salary.ErrInvalidInput) {
      // 400 to the client
  }

SEE ALSO:
  - allocator.go: raises InvalidInputError for fixed CTC < 0
  - calculator.go: raises InvalidInputError for ctc ≤ 0
*/
package salary

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for negative or inconsistent monetary inputs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCityNotFound is returned by city-tax stores when updating or reading a
	// record that does not exist.
	ErrCityNotFound = errors.New("city tax record not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidInputError names the offending field and value.
type InvalidInputError struct {
	Field  string
	Value  decimal.Decimal
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %s: %s", e.Field, e.Value.String(), e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidInput(field string, value decimal.Decimal, reason string) error {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing city record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCityNotFound)
}
