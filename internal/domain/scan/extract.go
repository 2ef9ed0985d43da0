// Package scan extracts nested data tables from SavedVariables-style
// add-on exports. Extraction is pure delimiter balancing; interpreting
// a table span is left to the per-shape parsers in this package.
package scan

import "strings"

// ExtractTable locates the first occurrence of "<name> = {" in text and
// returns the full balanced {...} span. It returns false when the name
// never occurs or the document ends before the braces balance, which is
// how truncated or corrupt exports present.
func ExtractTable(text, name string) (string, bool) {
	idx := findAssignment(text, name)
	if idx < 0 {
		return "", false
	}

	open := strings.IndexByte(text[idx:], '{')
	if open < 0 {
		return "", false
	}
	start := idx + open

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	// Depth never returned to zero: truncated input.
	return "", false
}

// findAssignment returns the offset of `name` in the first line shaped
// like "<name> = {" or -1. Matching on the assignment rather than the
// bare name avoids tripping over the name appearing inside string data.
func findAssignment(text, name string) int {
	from := 0
	for {
		i := strings.Index(text[from:], name)
		if i < 0 {
			return -1
		}
		at := from + i
		rest := text[at+len(name):]
		trimmed := strings.TrimLeft(rest, " \t")
		if strings.HasPrefix(trimmed, "=") {
			after := strings.TrimLeft(trimmed[1:], " \t\r\n")
			if strings.HasPrefix(after, "{") {
				return at
			}
		}
		from = at + len(name)
	}
}
