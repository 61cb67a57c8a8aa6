package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternal      = errors.New("external provider error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Details captures the structured fields a tagged error carries for logging.
type ErrorDetails struct {
	Kind    string
	Message string
	Cause   error
}

// Details extracts structured logging fields from a tagged error.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{
		Kind:    "transient",
		Message: err.Error(),
		Cause:   errors.Unwrap(err),
	}
	switch {
	case errors.Is(err, ErrValidation):
		details.Kind = "validation"
	case errors.Is(err, ErrConfiguration):
		details.Kind = "configuration"
	case errors.Is(err, ErrNotFound):
		details.Kind = "not_found"
	case errors.Is(err, ErrTimeout):
		details.Kind = "timeout"
	case errors.Is(err, ErrExternal):
		details.Kind = "external"
	}
	return details
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
