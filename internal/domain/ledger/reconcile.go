package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DominusFuror/tradefury/internal/domain/model"
	"github.com/DominusFuror/tradefury/internal/domain/scan"
	"github.com/DominusFuror/tradefury/pkg/metrics"
)

// DefaultUnitSeconds is how many seconds one history time-key step
// spans when the caller does not say otherwise.
const DefaultUnitSeconds = 3600

// Reconstruct turns raw relative-time records into absolute
// observations. The export carries only counters where larger means
// more recent; given the document-wide maximum counter and an anchor
// ("now"), each record lands at
//
//	anchor - (maxKey - recordKey) * unitSeconds.
//
// The per-item unit price is round(total / max(quantity, 1)); records
// whose computed price is not positive are dropped.
func Reconstruct(records []scan.RawRecord, maxKey int64, anchor time.Time, unitSeconds int64, source string) model.PriceHistory {
	if unitSeconds <= 0 {
		unitSeconds = DefaultUnitSeconds
	}

	history := make(model.PriceHistory, 0, len(records))
	for _, rec := range records {
		price := unitPrice(rec.Total, rec.Quantity)
		if price <= 0 {
			metrics.RecordEntryDropped()
			continue
		}
		age := time.Duration(maxKey-rec.TimeKey) * time.Duration(unitSeconds) * time.Second
		history = append(history, model.PriceObservation{
			Price:      price,
			ObservedAt: anchor.Add(-age),
			Source:     source,
		})
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].ObservedAt.Before(history[j].ObservedAt)
	})
	return history
}

// unitPrice divides a total listing price by its quantity, rounding
// half away from zero to stay in whole minor-currency units.
func unitPrice(total, quantity int64) int64 {
	if quantity < 1 {
		quantity = 1
	}
	return decimal.NewFromInt(total).
		DivRound(decimal.NewFromInt(quantity), 0).
		IntPart()
}
