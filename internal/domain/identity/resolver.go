package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DominusFuror/tradefury/internal/domain/model"
	"github.com/DominusFuror/tradefury/pkg/logger"
	"github.com/DominusFuror/tradefury/pkg/metrics"
)

// Match is one candidate returned by the external search service.
type Match struct {
	ID   model.ItemID
	Name string
}

// LookupService is the best-effort external name/id lookup. Failures
// are logged and absorbed by the resolver, never propagated past it.
type LookupService interface {
	SearchByName(ctx context.Context, text string) ([]Match, error)
	FetchCanonicalName(ctx context.Context, id model.ItemID) (string, error)
}

// RefIndex is the precomputed reference-data name index, consulted as a
// free first pass before the persisted cache or any external call.
type RefIndex interface {
	LookupName(normalized string) (model.ItemID, bool)
}

// SnapshotStore persists the identity cache between sessions. The kv
// adapter satisfies it.
type SnapshotStore interface {
	ReadJSON(ctx context.Context, key string, into any) error
	WriteJSON(ctx context.Context, key string, v any) error
}

// Mapping is delivered to listeners on every cache change.
type Mapping struct {
	ID   model.ItemID
	Name string
}

// Listener receives mapping changes synchronously, in registration
// order. A panicking listener is isolated and cannot block the others.
type Listener func(Mapping)

// SnapshotKey is the kv key the cache snapshot lives under.
const SnapshotKey = "identity-cache"

type subscription struct {
	seq int
	fn  Listener
}

// Resolver owns the name<->id cache and every path that can populate
// it: reference data, the persisted snapshot, external search, and the
// bounded canonical-name lookup queue.
type Resolver struct {
	index  *Index
	ref    RefIndex
	lookup LookupService
	store  SnapshotStore
	key    string
	log    logger.Logger

	maxInFlight   int
	lookupTimeout time.Duration
	queue         *lookupQueue

	mu           sync.Mutex
	subs         []subscription
	nextSeq      int
	flushPending bool
}

// NewResolver builds a resolver. Every collaborator is optional: with
// none set it degrades to a purely in-memory cache.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		index:         NewIndex(),
		key:           SnapshotKey,
		maxInFlight:   defaultMaxInFlight,
		lookupTimeout: 10 * time.Second,
		log:           logger.Get().Named("identity"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.queue = newLookupQueue(r.maxInFlight, r.fetchName)
	return r
}

// Hydrate loads the persisted cache snapshot. A missing or unreadable
// blob is logged and ignored: the in-memory cache stays authoritative
// and rebuilds opportunistically from re-imports.
func (r *Resolver) Hydrate(ctx context.Context) {
	if r.store == nil {
		return
	}
	var snap Snapshot
	if err := r.store.ReadJSON(ctx, r.key, &snap); err != nil {
		r.log.Warn(ctx, "identity cache not hydrated", logger.Error(err))
		return
	}
	r.index.hydrate(snap)
	metrics.UpdateIdentityCacheSize(r.index.Len())
	r.log.Info(ctx, "identity cache hydrated", logger.Int("mappings", r.index.Len()))
}

// Resolve maps a display name to an item id: cache, then reference
// data, then external search. Search candidates are ranked exact
// normalized match first, then substring containment, then first.
func (r *Resolver) Resolve(ctx context.Context, name string) (model.ItemID, error) {
	norm := Normalize(name)
	if norm == "" {
		return 0, ErrEmptyName
	}
	if id, ok := r.index.Lookup(norm); ok {
		return id, nil
	}
	if r.ref != nil {
		if id, ok := r.ref.LookupName(norm); ok {
			r.apply(ctx, id, name)
			return id, nil
		}
	}
	if r.lookup == nil {
		metrics.RecordNameUnresolved()
		return 0, fmt.Errorf("resolve %q: %w", name, ErrNotFound)
	}

	start := time.Now()
	matches, err := r.lookup.SearchByName(ctx, name)
	metrics.RecordLookupLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLookupError()
		return 0, fmt.Errorf("search %q: %w", name, err)
	}
	best, ok := pickMatch(norm, matches)
	if !ok {
		metrics.RecordNameUnresolved()
		return 0, fmt.Errorf("resolve %q: %w", name, ErrNotFound)
	}
	// Cached under the canonical name only; the index keeps one name
	// per id, so the alias that found the match stays unmapped and a
	// repeated alias lookup goes back to the search service.
	r.apply(ctx, best.ID, best.Name)
	metrics.RecordNameResolved()
	return best.ID, nil
}

// ResolveMany resolves names concurrently, bounded by the lookup cap.
// Failures are omitted from the result, not raised; completion order is
// not guaranteed.
func (r *Resolver) ResolveMany(ctx context.Context, names []string) map[string]model.ItemID {
	out := make(map[string]model.ItemID, len(names))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxInFlight)
	for _, name := range names {
		name := name
		g.Go(func() error {
			id, err := r.Resolve(ctx, name)
			if err != nil {
				r.log.Debug(ctx, "name not resolved", logger.String("name", name), logger.Error(err))
				return nil
			}
			mu.Lock()
			out[name] = id
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ResolveID maps an id to its canonical display name, via cache then
// the external service.
func (r *Resolver) ResolveID(ctx context.Context, id model.ItemID) (string, error) {
	if !id.Valid() {
		return "", ErrInvalidID
	}
	if name, ok := r.index.NameOf(id); ok {
		return name, nil
	}
	if r.lookup == nil {
		return "", fmt.Errorf("resolve id %d: %w", id, ErrNotFound)
	}
	start := time.Now()
	name, err := r.lookup.FetchCanonicalName(ctx, id)
	metrics.RecordLookupLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLookupError()
		return "", fmt.Errorf("fetch name for %d: %w", id, err)
	}
	r.apply(ctx, id, name)
	return name, nil
}

// Prime bulk-inserts mappings known to be correct, such as the
// history-table name index. Persistence and listener notification fire
// only for pairs that actually change the cache.
func (r *Resolver) Prime(ctx context.Context, pairs map[string]model.ItemID) {
	changed := 0
	for name, id := range pairs {
		if r.index.put(id, name) {
			changed++
			r.notify(Mapping{ID: id, Name: name})
		}
	}
	if changed > 0 {
		metrics.UpdateIdentityCacheSize(r.index.Len())
		r.flushAsync(ctx)
		r.log.Debug(ctx, "identity cache primed", logger.Int("changed", changed))
	}
}

// SetOverride force-assigns a display name to an id, reporting what it
// displaced instead of silently overwriting it.
func (r *Resolver) SetOverride(ctx context.Context, id model.ItemID, name string) (OverrideReport, error) {
	if !id.Valid() {
		return OverrideReport{}, ErrInvalidID
	}
	name = strings.TrimSpace(name)
	if name == "" || Normalize(name) == "" {
		return OverrideReport{}, ErrEmptyName
	}

	rep, changed := r.index.override(id, name)
	if changed {
		metrics.RecordIdentityOverride()
		metrics.UpdateIdentityCacheSize(r.index.Len())
		r.notify(Mapping{ID: id, Name: name})
		r.flushAsync(ctx)
	}
	return rep, nil
}

// RequestName schedules an idle-time canonical-name lookup for an id.
// Ids already named in the cache are never queued; failed lookups are
// dropped and may be re-requested by whoever needs them next.
func (r *Resolver) RequestName(id model.ItemID) {
	if !id.Valid() || r.lookup == nil {
		return
	}
	if _, ok := r.index.NameOf(id); ok {
		return
	}
	r.queue.enqueue(id)
	metrics.UpdateLookupQueueDepth(r.queue.depth())
}

// AddListener registers a mapping-change callback and returns its
// unsubscribe function.
func (r *Resolver) AddListener(fn Listener) func() {
	r.mu.Lock()
	seq := r.nextSeq
	r.nextSeq++
	r.subs = append(r.subs, subscription{seq: seq, fn: fn})
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, s := range r.subs {
			if s.seq == seq {
				r.subs = append(r.subs[:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

// NameOf exposes the cached display name for an id.
func (r *Resolver) NameOf(id model.ItemID) (string, bool) {
	return r.index.NameOf(id)
}

// Close stops queued lookup work. In-flight requests are not cancelled;
// their results land in the cache and are simply never awaited.
func (r *Resolver) Close() {
	r.queue.close()
}

// fetchName is the queue worker body: one bounded canonical-name fetch.
func (r *Resolver) fetchName(id model.ItemID) {
	ctx, cancel := context.WithTimeout(context.Background(), r.lookupTimeout)
	defer cancel()

	if _, err := r.ResolveID(ctx, id); err != nil {
		r.log.Warn(ctx, "queued name lookup failed",
			logger.Int64("itemId", int64(id)),
			logger.Error(err),
		)
	}
	metrics.UpdateLookupQueueDepth(r.queue.depth())
}

// apply is the single cache mutation path for resolved pairs.
func (r *Resolver) apply(ctx context.Context, id model.ItemID, name string) {
	if r.index.put(id, name) {
		metrics.UpdateIdentityCacheSize(r.index.Len())
		r.notify(Mapping{ID: id, Name: name})
		r.flushAsync(ctx)
	}
}

// notify delivers a change to all listeners synchronously in
// registration order, isolating panics per listener.
func (r *Resolver) notify(m Mapping) {
	r.mu.Lock()
	subs := make([]subscription, len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, s := range subs {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.log.Error(context.Background(), "identity listener panicked",
						logger.Any("panic", rec),
					)
				}
			}()
			s.fn(m)
		}()
	}
}

// flushAsync persists a snapshot fire-and-forget, coalescing bursts of
// changes into one write. A failed write is logged; in-memory state
// stays authoritative for the session.
func (r *Resolver) flushAsync(ctx context.Context) {
	if r.store == nil {
		return
	}
	r.mu.Lock()
	if r.flushPending {
		r.mu.Unlock()
		return
	}
	r.flushPending = true
	r.mu.Unlock()

	go func() {
		r.mu.Lock()
		r.flushPending = false
		r.mu.Unlock()

		snap := r.index.snapshot()
		if err := r.store.WriteJSON(context.WithoutCancel(ctx), r.key, snap); err != nil {
			metrics.RecordPersistenceError()
			r.log.Warn(ctx, "identity cache flush failed", logger.Error(err))
		}
	}()
}

// pickMatch ranks search candidates: exact normalized match, then
// substring containment, then whatever came first.
func pickMatch(norm string, matches []Match) (Match, bool) {
	var bySubstring *Match
	for i, m := range matches {
		mn := Normalize(m.Name)
		if mn == norm {
			return m, true
		}
		if bySubstring == nil && strings.Contains(mn, norm) {
			bySubstring = &matches[i]
		}
	}
	if bySubstring != nil {
		return *bySubstring, true
	}
	if len(matches) > 0 {
		return matches[0], true
	}
	return Match{}, false
}
