// Package ledger reconciles price observations from repeated imports
// into bounded, chronologically ordered per-item histories.
package ledger

import (
	"sort"

	"github.com/DominusFuror/tradefury/internal/domain/model"
)

// DefaultRetention is the per-item history cap used when callers pass
// no explicit limit.
const DefaultRetention = 100

// MergeHistories folds incoming observations into existing histories.
// For every item in incoming: append entries not already present as an
// exact (price, timestamp) pair, sort ascending by timestamp, keep the
// most recent retention entries. Items only in existing pass through
// unchanged. Importing the same document twice is a no-op beyond the
// first import. Neither argument is mutated.
func MergeHistories(existing, incoming model.Ledger, retention int) model.Ledger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	out := existing.Clone()
	if out == nil {
		out = make(model.Ledger, len(incoming))
	}

	for id, history := range incoming {
		merged := out[id]
		for _, obs := range history {
			if !merged.Contains(obs) {
				merged = append(merged, obs)
			}
		}
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].ObservedAt.Before(merged[j].ObservedAt)
		})
		if len(merged) > retention {
			merged = merged[len(merged)-retention:]
		}
		out[id] = merged
	}
	return out
}

// MergePreferRecent unifies two independently maintained imports, for
// example a local copy and a shared one. The chronologically later
// ImportedAt wins as the primary metadata source; the other side is
// merged in as incoming. When timestamps give no answer the first
// argument is treated as primary.
func MergePreferRecent(a, b *model.ParsedImport, retention int) *model.ParsedImport {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	primary, secondary := a, b
	if !b.ImportedAt.IsZero() && (a.ImportedAt.IsZero() || b.ImportedAt.After(a.ImportedAt)) {
		primary, secondary = b, a
	}

	return &model.ParsedImport{
		ID:         primary.ID,
		ImportedAt: primary.ImportedAt,
		Source:     primary.Source,
		Unresolved: primary.Unresolved,
		ItemPrices: MergeHistories(primary.ItemPrices, secondary.ItemPrices, retention),
	}
}
