// Package releases owns release-event identity and normalization: resolving
// a raw calendar row to its deterministic event key and short id, filtering
// rows against the configured indicator, and merging rediscovered rows into
// existing events without ever creating duplicates.
package releases
