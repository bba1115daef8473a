// Package errors defines the structured error types shared by the analysis
// engine and the HTTP layer. Engine errors carry the failing component and
// the offending parameters as fields, never as formatted strings, so callers
// can decide presentation.
package errors

import "fmt"

// EmptyInputError signals that a series contained no observations when the
// engine needed data, typically after exclusion filtering removed every row.
type EmptyInputError struct {
	Component string
	Series    string
}

func (e *EmptyInputError) Error() string {
	if e.Series != "" {
		return fmt.Sprintf("%s: series %q has no observations", e.Component, e.Series)
	}
	return fmt.Sprintf("%s: no input data", e.Component)
}

// InsufficientDataError signals that fewer rows survived than a computation
// requires. Fatal for the step that raised it.
type InsufficientDataError struct {
	Component string
	Rows      int
	Required  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %d rows available, %d required", e.Component, e.Rows, e.Required)
}

// InvalidParameterError signals a parameter rejected at entry. Parameters are
// never silently coerced to defaults.
type InvalidParameterError struct {
	Component string
	Parameter string
	Value     any
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s: invalid %s %v: %s", e.Component, e.Parameter, e.Value, e.Reason)
}

// NoValidShiftError signals that every candidate shift produced an undefined
// R-squared. The per-shift table is still returned alongside this error so
// callers can inspect it.
type NoValidShiftError struct {
	MaxShift int
}

func (e *NoValidShiftError) Error() string {
	return fmt.Sprintf("static scorer: no shift in [-%d, %d] produced a defined R-squared", e.MaxShift, e.MaxShift)
}
