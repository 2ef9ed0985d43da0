package scan

import (
	"html"
	"strconv"
	"strings"

	"github.com/DominusFuror/tradefury/internal/domain/model"
	"github.com/DominusFuror/tradefury/pkg/metrics"
)

// idKey marks the entry inside an item block that carries the numeric
// item id, shaped "<digits>:<suffix>".
const idKey = "is"

// RawRecord is one relative-time price observation as exported: a time
// counter (larger = more recent), the total listed price, and the
// quantity it covers.
type RawRecord struct {
	TimeKey  int64
	Total    int64
	Quantity int64
}

// HistoryTable is the interpreted pricing-history span.
type HistoryTable struct {
	// NameIndex maps display names to ids for every block whose id was
	// discoverable. The resolver uses it as a trusted first fallback.
	NameIndex map[string]model.ItemID

	// Records holds raw history per discovered item id.
	Records map[model.ItemID][]RawRecord

	// Unkeyed holds raw history for blocks that carried no id entry;
	// their names may still resolve through the identity layer.
	Unkeyed map[string][]RawRecord

	// MaxTimeKey is the highest time counter seen anywhere in the span.
	// Timestamp reconstruction interprets it as "now".
	MaxTimeKey int64
}

// ParseHistoryTable reads an itemDisplayName -> { "is"/timeKey -> value }
// span. Entries that do not fit either shape are skipped silently.
func ParseHistoryTable(span string) HistoryTable {
	out := HistoryTable{
		NameIndex: make(map[string]model.ItemID),
		Records:   make(map[model.ItemID][]RawRecord),
		Unkeyed:   make(map[string][]RawRecord),
	}

	var (
		depth   int
		name    string
		id      model.ItemID
		records []RawRecord
	)

	commit := func() {
		if name == "" {
			return
		}
		if id.Valid() {
			out.NameIndex[name] = id
			if len(records) > 0 {
				out.Records[id] = append(out.Records[id], records...)
			}
		} else if len(records) > 0 {
			out.Unkeyed[name] = append(out.Unkeyed[name], records...)
		}
		name, id, records = "", 0, nil
	}

	for _, line := range strings.Split(span, "\n") {
		if f, ok := splitLine(line); ok {
			switch {
			case f.opensTable && depth == 1:
				commit()
				name = html.UnescapeString(f.key)
			case depth >= 2 && f.key == idKey:
				id = parseItemID(f.value)
			case depth >= 2:
				if rec, ok := parseHistoryRecord(f.key, f.value); ok {
					records = append(records, rec)
					if rec.TimeKey > out.MaxTimeKey {
						out.MaxTimeKey = rec.TimeKey
					}
				} else {
					metrics.RecordEntryDropped()
				}
			}
		}
		depth += braceDelta(line)
	}
	commit()
	return out
}

// parseItemID extracts the digits before the first ':' of an id entry.
func parseItemID(value string) model.ItemID {
	if i := strings.IndexByte(value, ':'); i >= 0 {
		value = value[:i]
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return model.ItemID(n)
}

// parseHistoryRecord interprets a numeric-keyed entry "total:quantity".
func parseHistoryRecord(key, value string) (RawRecord, bool) {
	timeKey, err := strconv.ParseInt(key, 10, 64)
	if err != nil || timeKey <= 0 {
		return RawRecord{}, false
	}
	total, qty, ok := splitPair(value)
	if !ok {
		return RawRecord{}, false
	}
	return RawRecord{TimeKey: timeKey, Total: total, Quantity: qty}, true
}

// splitPair parses "<total>:<quantity>". A missing or malformed
// quantity defaults to 1 so lone totals still count as one listing.
func splitPair(value string) (total, qty int64, ok bool) {
	head, tail, found := strings.Cut(value, ":")
	total, err := strconv.ParseInt(head, 10, 64)
	if err != nil || total <= 0 {
		return 0, 0, false
	}
	qty = 1
	if found {
		if n, err := strconv.ParseInt(tail, 10, 64); err == nil && n > 0 {
			qty = n
		}
	}
	return total, qty, true
}
