// Package stringutil provides common string manipulation utilities.
package stringutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Ellipsis is appended to truncated values.
const Ellipsis = "…"

// Truncate shortens s to at most limit runes, including the ellipsis marker.
// The cut never splits a multi-byte character, and when the text contains
// whitespace the cut moves back to the last whitespace boundary so words
// stay intact. Truncating an already-truncated string at the same limit
// returns it unchanged (no double ellipsis).
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	// Reserve one rune for the ellipsis so the result fits within limit
	// and a second pass is a no-op.
	cut := limit - 1
	if cut == 0 {
		return Ellipsis
	}

	// Back up to the last whitespace boundary when we would cut mid-word.
	if !unicode.IsSpace(runes[cut]) && !unicode.IsSpace(runes[cut-1]) {
		if idx := lastSpaceBefore(runes, cut); idx > 0 {
			cut = idx
		}
	}

	out := strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
	if out == "" {
		out = string(runes[:cut])
	}
	return out + Ellipsis
}

// lastSpaceBefore returns the index of the last whitespace rune at or before
// limit, or -1 if the prefix contains no whitespace.
func lastSpaceBefore(runes []rune, limit int) int {
	for i := limit; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}

// Normalize applies NFC normalization and collapses runs of whitespace to a
// single space. Used before classification and embedding so equivalent inputs
// produce identical downstream signals.
func Normalize(s string) string {
	normalized := norm.NFC.String(s)
	return strings.Join(strings.Fields(normalized), " ")
}

// WordCount returns the number of whitespace-delimited words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ContainsFold reports whether substr is contained in s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
