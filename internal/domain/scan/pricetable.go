package scan

import (
	"html"
	"strings"

	"github.com/DominusFuror/tradefury/pkg/metrics"
)

// ParsePriceTable reads a realm -> { itemDisplayName -> price } span and
// returns the minimum observed price per display name. The same item
// listed on several realms keeps its cheapest known listing. Keys are
// HTML-unescaped before storing. Malformed or non-positive values are
// skipped, never an error.
func ParsePriceTable(span string) map[string]int64 {
	prices := make(map[string]int64)

	depth := 0
	for _, line := range strings.Split(span, "\n") {
		f, ok := splitLine(line)
		if ok {
			switch {
			case f.opensTable:
				// Depth 1 keys are realm names; tracked only as
				// depth bookkeeping, nothing downstream uses them.
			case depth >= 2:
				if price, ok := parsePrice(f.value); ok {
					name := html.UnescapeString(f.key)
					if prev, seen := prices[name]; !seen || price < prev {
						prices[name] = price
					}
				} else {
					metrics.RecordEntryDropped()
				}
			}
		}
		depth += braceDelta(line)
	}
	return prices
}
