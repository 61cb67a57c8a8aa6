// Package notify is the outbound delivery channel, backed by ntfy. An
// unconfigured channel degrades to a noop that records deliveries as skipped.
package notify
