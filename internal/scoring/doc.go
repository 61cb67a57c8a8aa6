// Package scoring discovers media coverage of an economic release and picks
// the single most trustworthy article. Candidates are extracted from a
// search results page, enriched with metadata in concurrent batches, scored
// against a fixed rule table, and the winner is validated against its full
// text. When any stage cannot produce a confident pick the engine degrades
// instead of failing, keeping the full candidate record for the audit trail.
package scoring
