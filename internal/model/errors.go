package model

import "fmt"

// ValidationError represents rejected input before any calculation runs
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// CalculationError represents a batch-level calculation failure.
// Per-item failures never surface as this error; they become ERROR
// placeholder results instead.
type CalculationError struct {
	Origin  Origin
	Message string
	Cause   error
}

func (e *CalculationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] calculation failed: %s (%v)", e.Origin, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] calculation failed: %s", e.Origin, e.Message)
}

func (e *CalculationError) Unwrap() error {
	return e.Cause
}

// NewCalculationError creates a new calculation error
func NewCalculationError(origin Origin, message string, cause error) *CalculationError {
	return &CalculationError{
		Origin:  origin,
		Message: message,
		Cause:   cause,
	}
}

// ParseError represents NFe document parsing errors
type ParseError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(field, message string, cause error) *ParseError {
	return &ParseError{
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}
