package services

import "context"

type contextKey string

const (
	eventIDKey   contextKey = "event_id"
	runIDKey     contextKey = "run_id"
	stepKey      contextKey = "step"
	requestIDKey contextKey = "request_id"
)

// WithEventID annotates context with the release event identifier.
func WithEventID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, eventIDKey, id)
}

// EventIDFromContext extracts the release event identifier if present.
func EventIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(eventIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the analysis run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the analysis run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStep annotates context with the workflow step name.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// StepFromContext returns the step name if present.
func StepFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stepKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
