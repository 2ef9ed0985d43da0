// Package identity maintains the bidirectional mapping between item
// display names and stable numeric item ids, resolving unknown names
// through reference data, a persisted cache and a bounded external
// lookup queue.
package identity

import (
	"regexp"
	"strings"
)

// colorEscape matches the add-on's inline color codes: "|cAARRGGBB"
// to start a colored run and "|r" to end it.
var colorEscape = regexp.MustCompile(`\|c[0-9a-fA-F]{8}|\|r`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize produces the canonical form under which names are compared
// and cached: color escapes stripped, whitespace runs collapsed to a
// single space, trimmed, lower-cased. Idempotent.
func Normalize(name string) string {
	s := colorEscape.ReplaceAllString(name, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
