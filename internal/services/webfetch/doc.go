// Package webfetch is the generic fetch/extract collaborator: raw HTML
// retrieval with a bounded body size, plus a single-pass HTML reducer that
// yields the title, meta tags, paragraph text, and links of a page. Both the
// official-report fallback and the media scoring engine consume it.
package webfetch
