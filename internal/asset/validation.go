package asset

import "fmt"

// ValidationResult accumulates schema and reference check outcomes for one
// asset. Adding an error forces Valid to false; warnings never do.
type ValidationResult struct {
	ID       string
	Valid    bool
	Errors   []string
	Warnings []string
}

// NewValidationResult returns a result that is valid until an error is added.
func NewValidationResult(id string) ValidationResult {
	return ValidationResult{ID: id, Valid: true}
}

// AddError records a failure and marks the result invalid.
func (r *ValidationResult) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

// AddWarning records a non-fatal anomaly.
func (r *ValidationResult) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge folds another result into r, preserving error/warning order.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	if !other.Valid {
		r.Valid = false
	}
}
