// Package batch holds the result and error types shared by the charge
// generator and the spreadsheet importer. Per-item failures are collected
// into a Result instead of aborting the whole batch.
package batch

import (
	"errors"
	"fmt"
)

// ErrStorage marks a failure of the underlying data store.
var ErrStorage = errors.New("storage failure")

// ValidationError reports a missing or invalid required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ReferenceError reports a source-local parent identifier with no entry in
// the cross-reference map.
type ReferenceError struct {
	Kind     string
	SourceID int
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("parent not found: %s %d", e.Kind, e.SourceID)
}

// Storage wraps err as a storage failure.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// Failure is one rejected row or entity.
type Failure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (f Failure) String() string {
	return fmt.Sprintf("row %d: %s", f.Row, f.Reason)
}

// Result aggregates the outcome of a batch operation.
type Result struct {
	Created  int       `json:"created"`
	Ignored  int       `json:"ignored"`
	Failures []Failure `json:"failures"`
}

// Errored is the number of failed items.
func (r Result) Errored() int {
	return len(r.Failures)
}

// Fail records a failure for row.
func (r *Result) Fail(row int, err error) {
	r.Failures = append(r.Failures, Failure{Row: row, Reason: err.Error()})
}

// Messages returns at most n failure messages, all of them when n <= 0.
func (r Result) Messages(n int) []string {
	var out []string
	for _, f := range r.Failures {
		if n > 0 && len(out) == n {
			break
		}
		out = append(out, f.String())
	}
	return out
}
