package identity

import (
	"time"

	"github.com/DominusFuror/tradefury/pkg/logger"
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithRefIndex sets the reference-data first-pass name index.
func WithRefIndex(ref RefIndex) Option {
	return func(r *Resolver) {
		if ref != nil {
			r.ref = ref
		}
	}
}

// WithLookupService sets the external search/fetch collaborator.
func WithLookupService(svc LookupService) Option {
	return func(r *Resolver) {
		if svc != nil {
			r.lookup = svc
		}
	}
}

// WithSnapshotStore sets the persistence collaborator and the key the
// cache snapshot is stored under.
func WithSnapshotStore(store SnapshotStore, key string) Option {
	return func(r *Resolver) {
		if store != nil {
			r.store = store
		}
		if key != "" {
			r.key = key
		}
	}
}

// WithMaxInFlight caps simultaneous external lookups.
func WithMaxInFlight(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxInFlight = n
		}
	}
}

// WithLookupTimeout bounds each queued external lookup.
func WithLookupTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.lookupTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the resolver.
func WithLogger(log logger.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}
