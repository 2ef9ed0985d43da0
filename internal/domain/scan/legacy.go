package scan

import (
	"strings"

	"github.com/DominusFuror/tradefury/internal/domain/model"
)

// legacyPriceKeys are the price-field synonyms old exports used, in no
// particular order. The first one seen inside a block wins.
var legacyPriceKeys = map[string]struct{}{
	"price":       {},
	"minBuyout":   {},
	"minbuyout":   {},
	"marketValue": {},
	"marketvalue": {},
	"buyout":      {},
	"mr":          {},
}

// ParseLegacyTable reads the oldest flat export layout: blocks keyed by
// an "is" id entry followed by one of several known price fields. It is
// a single-pass, order-dependent scanner kept only for backward
// compatibility; anything it cannot read it ignores.
func ParseLegacyTable(span string) map[model.ItemID]int64 {
	prices := make(map[model.ItemID]int64)

	var (
		id    model.ItemID
		price int64
	)
	commit := func() {
		if id.Valid() && price > 0 {
			prices[id] = price
		}
		id, price = 0, 0
	}

	for _, line := range strings.Split(span, "\n") {
		if strings.Contains(line, "}") {
			commit()
		}
		f, ok := splitLine(line)
		if !ok {
			continue
		}
		switch {
		case f.key == idKey:
			commit()
			id = parseItemID(f.value)
		default:
			if _, known := legacyPriceKeys[f.key]; known && price == 0 {
				if p, ok := parsePrice(f.value); ok {
					price = p
				}
			}
		}
	}
	commit()
	return prices
}
