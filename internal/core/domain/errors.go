package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Error Categories
// ============================================================================

// Category sentinels. Every specific error below matches exactly one of these
// with errors.Is, which is what the HTTP error mapper switches on.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrGenerationFailed = errors.New("evidence pack generation failed")
	ErrAuditWriteFailed = errors.New("audit write failed")
)

type categorizedError struct {
	category error
	msg      string
}

func (e *categorizedError) Error() string { return e.msg }

func (e *categorizedError) Is(target error) bool { return target == e.category }

func notFound(msg string) error { return &categorizedError{category: ErrNotFound, msg: msg} }
func conflict(msg string) error { return &categorizedError{category: ErrConflict, msg: msg} }

// ============================================================================
// Not Found Errors
// ============================================================================

var (
	ErrModelNotFound        = notFound("model not found")
	ErrEvidencePackNotFound = notFound("evidence pack not found")
	ErrArtifactNotFound     = notFound("evidence pack artifact not found")
	ErrControlNotFound      = notFound("control not found")
	ErrPhilosophyNotFound   = notFound("governance philosophy not found")
)

// ============================================================================
// Conflict Errors
// ============================================================================

var (
	ErrModelExists      = conflict("model with this id already exists")
	ErrControlExists    = conflict("control already exists")
	ErrPhilosophyExists = conflict("governance philosophy already exists for this scope")
)

// ============================================================================
// Validation Errors
// ============================================================================

// ValidationError reports a single malformed or out-of-range field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ErrNoUpdates is returned when an update request carries no fields.
var ErrNoUpdates = Invalid("updates", "no updates provided")
