package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lshigami/prepbank/internal/repository"
)

// ErrAttemptClosed is returned when a response or finish request targets an
// attempt that is no longer in progress.
var ErrAttemptClosed = errors.New("test attempt is no longer in progress")

// ErrExplanationUnavailable is returned when no explanation source is configured.
var ErrExplanationUnavailable = errors.New("question explanation service is unavailable")

// ValidationError carries field-level input problems found by a service.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func newOptionNotFound(id string) error {
	return repository.NewNotFound("Option", id)
}
