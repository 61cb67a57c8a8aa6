// Package store persists all release-processing state as a single JSON
// document holding three collections: release events, release status rows
// (the state-machine cursors), and analysis runs.
//
// The store guarantees two things the workflow depends on: updates against
// the same state file never lose writes (an in-process mutex plus a lock file
// serialize the read-mutate-write cycle), and readers never observe a
// half-written document (every commit is a temp-file write followed by an
// atomic rename). Malformed persisted state is normalized to an empty
// document rather than surfaced as an error.
package store
