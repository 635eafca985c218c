/*
errors.go - Centralized error types for the engine

PURPOSE:
  All engine error types in one place. Callers (API, stores) wrap these
  with their own context and branch with errors.Is.

Note that the projection path itself never returns errors: malformed
entries degrade to inert/zero (see validate.go and the fail-closed
matcher). Errors here belong to the edges - loading, lookup, strict
validation.
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDocumentNotFound is returned when a referenced document doesn't exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrSandboxNotFound is returned when a referenced sandbox doesn't exist.
	ErrSandboxNotFound = errors.New("sandbox not found")

	// ErrStreamNotFound is returned when a referenced stream doesn't exist.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrValidationFailed is returned by strict validation when a document
	// carries issues lenient mode would have silently repaired.
	ErrValidationFailed = errors.New("document validation failed")
)

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrSandboxNotFound) ||
		errors.Is(err, ErrStreamNotFound)
}

// =============================================================================
// VALIDATION ISSUES - Carry per-entry context
// =============================================================================

// Issue describes one validation finding. Lenient validation repairs or
// drops the offending entry; strict validation reports it.
type Issue struct {
	Code     string
	StreamID StreamID
	Field    string
	Message  string
}

func (i Issue) String() string {
	if i.StreamID != "" {
		return fmt.Sprintf("%s: stream %s: %s", i.Code, i.StreamID, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// ValidationError aggregates the issues of a strict validation pass.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document validation failed with %d issue(s)", len(e.Issues))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
