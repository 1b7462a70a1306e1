package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool { return strings.TrimSpace(s) == "" }

// SplitLines splits on newlines, dropping a trailing carriage return per line.
func SplitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// DisplayWidth returns the number of terminal columns s occupies.
// East Asian wide and fullwidth runes count as two columns.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

// PadRight fills s with pad up to cols display columns, truncating with "…" if it is wider.
func PadRight(s string, cols int, pad rune) string {
	w := DisplayWidth(s)
	if w > cols {
		s = Truncate(s, cols)
		w = DisplayWidth(s)
	}
	if w < cols {
		s += strings.Repeat(string(pad), cols-w)
	}
	return s
}

// Truncate cuts s so that it fits in cols display columns, marking the cut with "…".
func Truncate(s string, cols int) string {
	if DisplayWidth(s) <= cols {
		return s
	}
	if cols <= 0 {
		return ""
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := runeWidth(r)
		if used+rw > cols-1 {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String() + "…"
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
