// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// ItemID identifies an item across scans, lookups and the ledger.
// Valid ids are positive.
type ItemID int64

// Valid reports whether the id is usable as a ledger key.
func (id ItemID) Valid() bool { return id > 0 }

// PriceObservation is a single observed price for an item, in minor
// currency units (copper). Immutable once created.
type PriceObservation struct {
	Price      int64     `json:"price"`
	ObservedAt time.Time `json:"observedAt"`
	Source     string    `json:"source,omitempty"`
}

// Equal reports whether two observations carry the same price at the
// same instant. Source is metadata and does not participate.
func (o PriceObservation) Equal(other PriceObservation) bool {
	return o.Price == other.Price && o.ObservedAt.Equal(other.ObservedAt)
}

// PriceHistory is the chronologically ascending series of observations
// kept for one item. The merge layer enforces sorting, uniqueness on
// (price, timestamp) and the retention cap.
type PriceHistory []PriceObservation

// Latest returns the most recent observation, or false when empty.
func (h PriceHistory) Latest() (PriceObservation, bool) {
	if len(h) == 0 {
		return PriceObservation{}, false
	}
	return h[len(h)-1], true
}

// Contains reports whether an equal (price, timestamp) entry is present.
func (h PriceHistory) Contains(o PriceObservation) bool {
	for _, e := range h {
		if e.Equal(o) {
			return true
		}
	}
	return false
}

// Clone returns a copy whose backing array is independent of h.
func (h PriceHistory) Clone() PriceHistory {
	if h == nil {
		return nil
	}
	out := make(PriceHistory, len(h))
	copy(out, h)
	return out
}

// Ledger maps item ids to their price histories.
type Ledger map[ItemID]PriceHistory

// Clone deep-copies the ledger so merges never alias caller state.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for id, h := range l {
		out[id] = h.Clone()
	}
	return out
}

// ParsedImport is the normalized result of ingesting one scan document.
type ParsedImport struct {
	ID         uuid.UUID `json:"id"`
	ItemPrices Ledger    `json:"itemPrices"`
	ImportedAt time.Time `json:"importedAt"`
	Source     string    `json:"source"`

	// Unresolved counts display names that could not be mapped to an
	// item id. Diagnostic only; never an error.
	Unresolved int `json:"unresolved,omitempty"`
}

// NewParsedImport stamps a fresh import with identity and time.
func NewParsedImport(prices Ledger, source string, at time.Time) *ParsedImport {
	return &ParsedImport{
		ID:         uuid.New(),
		ItemPrices: prices,
		ImportedAt: at,
		Source:     source,
	}
}
