// Package snapshot writes the per-run audit trail: one directory per
// (event id, run id) holding every intermediate pipeline artifact plus a
// manifest indexing them. Artifacts are never partially visible to a
// concurrent reader; each file is committed with an atomic rename.
package snapshot
