// Package service sequences one document ingestion: extraction,
// parsing, identity resolution and history reconciliation, producing a
// normalized ParsedImport for the caller to merge and persist.
package service

import (
	"context"
	"time"

	"github.com/DominusFuror/tradefury/internal/adapters/kv"
	"github.com/DominusFuror/tradefury/internal/domain/identity"
	"github.com/DominusFuror/tradefury/internal/domain/ledger"
	"github.com/DominusFuror/tradefury/internal/domain/model"
	"github.com/DominusFuror/tradefury/internal/domain/scan"
	"github.com/DominusFuror/tradefury/pkg/logger"
	"github.com/DominusFuror/tradefury/pkg/metrics"
)

// Default export table names, matching the add-on's SavedVariables.
const (
	DefaultPriceTable   = "AUCTIONATOR_PRICE_DATABASE"
	DefaultHistoryTable = "AUCTIONATOR_PRICE_HISTORY"
	DefaultScanMarker   = "AUCTIONATOR_LAST_SCAN_TIME"
)

// stage labels the ingestion state machine for logs.
type stage string

const (
	stageExtracting  stage = "extracting"
	stageParsing     stage = "parsing"
	stageResolving   stage = "resolving"
	stageReconciling stage = "reconciling"
	stageDone        stage = "done"
)

// Service is the ingestion orchestrator. Independent Parse calls share
// nothing but the resolver; each call only reads and returns state.
type Service struct {
	resolver *identity.Resolver
	store    kv.Store
	log      logger.Logger

	retention    int
	unitSeconds  int64
	priceTable   string
	historyTable string
	scanMarker   string

	// now is swappable for tests.
	now func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence collaborator used by MergeInto.
func WithStore(store kv.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRetention caps per-item history length.
func WithRetention(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retention = n
		}
	}
}

// WithUnitSeconds sets how many seconds one history time-key spans.
func WithUnitSeconds(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.unitSeconds = n
		}
	}
}

// WithTableNames overrides the export table and scan-marker names.
// Empty strings keep the defaults.
func WithTableNames(price, history, marker string) Option {
	return func(s *Service) {
		if price != "" {
			s.priceTable = price
		}
		if history != "" {
			s.historyTable = history
		}
		if marker != "" {
			s.scanMarker = marker
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New builds the orchestrator around a resolver.
func New(resolver *identity.Resolver, opts ...Option) *Service {
	s := &Service{
		resolver:     resolver,
		log:          logger.Get().Named("ingest"),
		retention:    ledger.DefaultRetention,
		unitSeconds:  ledger.DefaultUnitSeconds,
		priceTable:   DefaultPriceTable,
		historyTable: DefaultHistoryTable,
		scanMarker:   DefaultScanMarker,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse ingests one exported document. It fails only when neither
// expected table is present; individual unresolvable names or malformed
// entries are dropped, counted and logged, never escalated.
func (s *Service) Parse(ctx context.Context, text, source string) (*model.ParsedImport, error) {
	s.logStage(ctx, stageExtracting, source)
	priceSpan, havePrice := scan.ExtractTable(text, s.priceTable)
	histSpan, haveHist := scan.ExtractTable(text, s.historyTable)
	if !havePrice && !haveHist {
		metrics.RecordImportFailed()
		return nil, ErrNoTables
	}

	anchor, marked := scan.FindLastScanTime(text, s.scanMarker)
	if !marked {
		// Wall-clock fallback. Repeated imports of the same marker-less
		// document will drift; see the scan package notes.
		anchor = s.now().UTC()
		s.log.Debug(ctx, "no scan marker; anchoring to current time", logger.String("source", source))
	}

	s.logStage(ctx, stageParsing, source)
	incoming := make(model.Ledger)
	unresolved := 0

	if haveHist {
		unresolved += s.ingestHistory(ctx, histSpan, anchor, source, incoming)
	}
	if havePrice {
		s.logStage(ctx, stageResolving, source)
		unresolved += s.ingestPrices(ctx, priceSpan, anchor, source, incoming)
	}

	s.logStage(ctx, stageReconciling, source)
	normalized := ledger.MergeHistories(nil, incoming, s.retention)

	imp := model.NewParsedImport(normalized, source, s.now().UTC())
	imp.Unresolved = unresolved

	observations := 0
	for _, h := range normalized {
		observations += len(h)
	}
	// Unresolved names are counted by the resolver at each miss; here
	// they only feed the import summary.
	metrics.RecordImport()
	metrics.RecordObservationsParsed(observations)

	s.logStage(ctx, stageDone, source)
	s.log.Info(ctx, "document ingested",
		logger.String("source", source),
		logger.Int("items", len(normalized)),
		logger.Int("observations", observations),
		logger.Int("unresolved", unresolved),
	)
	return imp, nil
}

// ingestHistory parses the pricing-history table, primes the resolver
// with its trusted name index, and reconstructs absolute timestamps.
// Returns the number of names it could not resolve.
func (s *Service) ingestHistory(ctx context.Context, span string, anchor time.Time, source string, into model.Ledger) int {
	ht := scan.ParseHistoryTable(span)
	s.resolver.Prime(ctx, ht.NameIndex)

	for id, recs := range ht.Records {
		h := ledger.Reconstruct(recs, ht.MaxTimeKey, anchor, s.unitSeconds, source)
		into[id] = append(into[id], h...)
	}

	unresolved := 0
	for name, recs := range ht.Unkeyed {
		id, err := s.resolver.Resolve(ctx, name)
		if err != nil {
			unresolved++
			s.log.Debug(ctx, "history name not resolved", logger.String("name", name), logger.Error(err))
			continue
		}
		h := ledger.Reconstruct(recs, ht.MaxTimeKey, anchor, s.unitSeconds, source)
		into[id] = append(into[id], h...)
	}
	return unresolved
}

// ingestPrices parses the named-price table and resolves its display
// names. When that yields nothing it falls back to the legacy flat
// layout, which is keyed by id directly.
func (s *Service) ingestPrices(ctx context.Context, span string, anchor time.Time, source string, into model.Ledger) int {
	prices := scan.ParsePriceTable(span)

	names := make([]string, 0, len(prices))
	for name := range prices {
		names = append(names, name)
	}
	ids := s.resolver.ResolveMany(ctx, names)

	unresolved := 0
	for name, price := range prices {
		id, ok := ids[name]
		if !ok {
			unresolved++
			continue
		}
		into[id] = append(into[id], model.PriceObservation{
			Price:      price,
			ObservedAt: anchor,
			Source:     source,
		})
	}

	if len(ids) > 0 {
		return unresolved
	}

	// Zero resolved prices: the span may be the old flat layout.
	legacy := scan.ParseLegacyTable(span)
	if len(legacy) > 0 {
		s.log.Info(ctx, "falling back to legacy price layout", logger.Int("items", len(legacy)))
	}
	for id, price := range legacy {
		into[id] = append(into[id], model.PriceObservation{
			Price:      price,
			ObservedAt: anchor,
			Source:     source,
		})
		// Names for legacy ids are filled in during idle time.
		s.resolver.RequestName(id)
	}
	return unresolved
}

// MergeInto folds an import into the persisted ledger and writes it
// back. A read miss starts from an empty ledger; the merged result is
// returned even when the write fails, since in-memory state stays
// authoritative for the session.
func (s *Service) MergeInto(ctx context.Context, imp *model.ParsedImport) (model.Ledger, error) {
	var existing model.Ledger
	if err := s.store.ReadJSON(ctx, kv.LedgerKey, &existing); err != nil && !kvNotFound(err) {
		metrics.RecordPersistenceError()
		s.log.Warn(ctx, "ledger read failed; starting empty", logger.Error(err))
	}

	merged := ledger.MergeHistories(existing, imp.ItemPrices, s.retention)
	metrics.UpdateLedgerItems(len(merged))
	if err := s.store.WriteJSON(ctx, kv.LedgerKey, merged); err != nil {
		metrics.RecordPersistenceError()
		return merged, err
	}
	return merged, nil
}

func (s *Service) logStage(ctx context.Context, st stage, source string) {
	s.log.Debug(ctx, "ingestion stage", logger.String("stage", string(st)), logger.String("source", source))
}
