// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	service "github.com/DominusFuror/tradefury/internal/app"
	"github.com/DominusFuror/tradefury/internal/domain/ledger"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir is where the file-backed key-value store keeps blobs.
	DataDir string `koanf:"data_dir"`

	// RetentionLimit caps the number of observations kept per item.
	RetentionLimit int `koanf:"retention_limit"`

	// UnitSeconds is how many seconds one history time-key step spans.
	UnitSeconds int64 `koanf:"unit_seconds"`

	// PriceTable, HistoryTable and ScanMarker name the export tables
	// and the last-scan timestamp marker in the document.
	PriceTable   string `koanf:"price_table"`
	HistoryTable string `koanf:"history_table"`
	ScanMarker   string `koanf:"scan_marker"`

	// LookupBaseURL is the external item lookup service. Empty
	// disables external lookups entirely.
	LookupBaseURL string `koanf:"lookup_base_url"`

	// LookupConcurrency caps simultaneous in-flight lookups.
	LookupConcurrency int `koanf:"lookup_concurrency"`

	// LookupTimeoutSeconds bounds each external request.
	LookupTimeoutSeconds int `koanf:"lookup_timeout_seconds"`

	// RefDataPath points at the tabular item-definitions file. Empty
	// skips the reference-data first pass.
	RefDataPath string `koanf:"refdata_path"`

	// MetricsAddr, when set, serves Prometheus metrics on that
	// address, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		DataDir:              ".tradefury",
		RetentionLimit:       ledger.DefaultRetention,
		UnitSeconds:          ledger.DefaultUnitSeconds,
		PriceTable:           service.DefaultPriceTable,
		HistoryTable:         service.DefaultHistoryTable,
		ScanMarker:           service.DefaultScanMarker,
		LookupConcurrency:    3,
		LookupTimeoutSeconds: 10,
	}
}
