package logging

import (
	"context"
	"log/slog"

	"macrowatch/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventID is the standardized structured logging key for release event identifiers.
	FieldEventID = "event_id"
	// FieldRunID is the standardized structured logging key for analysis run identifiers.
	FieldRunID = "run_id"
	// FieldStep is the standardized structured logging key for workflow step names.
	FieldStep = "step"
	// FieldState is the standardized structured logging key for state machine states.
	FieldState = "state"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType is the standardized structured logging key for machine-greppable event tags.
	FieldEventType = "event_type"
	// FieldErrorKind is the standardized structured logging key for classified error kinds.
	FieldErrorKind = "error_kind"
	// FieldErrorHint is the standardized structured logging key for operator remediation hints.
	FieldErrorHint = "error_hint"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.EventIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEventID, id))
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if step, ok := services.StepFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStep, step))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger annotated with any correlation values stored in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}
