package scan

import (
	"strconv"
	"strings"
)

// field is one "key = value" line inside a table span, split and
// unquoted but otherwise uninterpreted.
type field struct {
	key        string
	value      string
	opensTable bool
}

// splitLine breaks a span line into key and value. Keys appear either
// bracketed (`["Frost Lotus"] = ...`) or bare (`lastScan = ...`). The
// value keeps no surrounding quotes and no trailing comma. Lines with
// no assignment return false.
func splitLine(line string) (field, bool) {
	line = strings.TrimSpace(line)
	eq := strings.Index(line, "=")
	if eq < 0 {
		return field{}, false
	}

	key := strings.TrimSpace(line[:eq])
	key = strings.TrimPrefix(key, "[")
	key = strings.TrimSuffix(key, "]")
	key = strings.Trim(key, `"`)
	if key == "" {
		return field{}, false
	}

	value := strings.TrimSpace(line[eq+1:])
	if strings.HasPrefix(value, "{") {
		return field{key: key, opensTable: true}, true
	}
	value = strings.TrimSuffix(value, ",")
	value = strings.Trim(value, `"`)
	return field{key: key, value: value}, true
}

// braceDelta returns opens minus closes on a line, ignoring braces that
// sit inside a quoted string.
func braceDelta(line string) int {
	delta := 0
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			if i == 0 || line[i-1] != '\\' {
				quoted = !quoted
			}
		case '{':
			if !quoted {
				delta++
			}
		case '}':
			if !quoted {
				delta--
			}
		}
	}
	return delta
}

// parsePrice interprets a value as a positive integer amount of minor
// currency. Anything else (floats, words, zero, negatives) is rejected.
func parsePrice(value string) (int64, bool) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
