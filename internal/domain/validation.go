package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError describes a single problem with a command field.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem with a command so callers can
// surface them all at once instead of fixing one field per round trip.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// HasErrors reports whether any problem was recorded.
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// AsError returns the collection as an error, or nil when empty.
func (v ValidationErrors) AsError() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Validator accumulates validation errors for one command.
type Validator struct {
	errs ValidationErrors
}

// Add records a problem.
func (val *Validator) Add(field, code, message string) {
	val.errs = append(val.errs, ValidationError{Field: field, Code: code, Message: message})
}

// RequirePositive records a problem unless amount > 0.
func (val *Validator) RequirePositive(field string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		val.Add(field, "amount.not.positive", "must be greater than zero")
	}
}

// RequireNonNegative records a problem unless amount >= 0.
func (val *Validator) RequireNonNegative(field string, amount decimal.Decimal) {
	if amount.IsNegative() {
		val.Add(field, "amount.negative", "must not be negative")
	}
}

// RequireNotBlank records a problem for an empty string.
func (val *Validator) RequireNotBlank(field, value string) {
	if strings.TrimSpace(value) == "" {
		val.Add(field, "value.blank", "must not be blank")
	}
}

// Result returns the accumulated errors, or nil if none.
func (val *Validator) Result() error {
	return val.errs.AsError()
}

// Errors returns the raw collection.
func (val *Validator) Errors() ValidationErrors {
	return val.errs
}
