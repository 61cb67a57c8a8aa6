// Package workflow is the engine room: a tick scheduler, a driver that
// discovers release events and advances each due event by exactly one state
// transition per tick, the per-state pipeline steps, and the retry/backoff
// policy. Progress is committed to the store after every transition, so the
// pipeline resumes exactly where it stopped after a crash.
package workflow
