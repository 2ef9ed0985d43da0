package service

import (
	"errors"

	"github.com/DominusFuror/tradefury/internal/adapters/kv"
)

// Sentinel kinds for ingestion errors.
var (
	// ErrNoTables means neither the price table nor the history table
	// was present in the document. The caller should be asked for a
	// valid export; nothing was ingested.
	ErrNoTables = errors.New("document contains no recognizable price or history table")
)

// kvNotFound distinguishes a first-run read miss from a real failure.
func kvNotFound(err error) bool { return errors.Is(err, kv.ErrNotFound) }
