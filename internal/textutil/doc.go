// Package textutil provides small text helpers shared by release filtering
// and candidate scoring: tokenization, whitespace normalization, and
// case-insensitive substring matching.
package textutil
