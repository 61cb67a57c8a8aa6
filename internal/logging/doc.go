// Package logging centralizes slog construction and the structured field
// vocabulary used across macrowatch. Console output is a colorized single-line
// format for interactive use; JSON output is available for ingestion. Helpers
// fold event/run/step correlation values from context into logger attrs so
// every log line from a workflow step can be traced to its event and run.
package logging
