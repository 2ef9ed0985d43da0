package identity

import (
	"sync"

	"github.com/DominusFuror/tradefury/internal/domain/model"
)

// defaultMaxInFlight caps simultaneous external lookups so the remote
// service is never flooded.
const defaultMaxInFlight = 3

// lookupQueue is a FIFO pending set with a hard cap on in-flight work.
// An id is removed from the set the instant a slot claims it, so the
// same id is never looked up twice concurrently, and completing one
// lookup immediately tries to fill the freed slot from pending.
type lookupQueue struct {
	mu       sync.Mutex
	pending  []model.ItemID
	queued   map[model.ItemID]struct{}
	inFlight map[model.ItemID]struct{}
	max      int
	closed   bool

	// fetch runs outside the lock on its own goroutine.
	fetch func(model.ItemID)
}

func newLookupQueue(max int, fetch func(model.ItemID)) *lookupQueue {
	if max < 1 {
		max = defaultMaxInFlight
	}
	return &lookupQueue{
		queued:   make(map[model.ItemID]struct{}),
		inFlight: make(map[model.ItemID]struct{}),
		max:      max,
		fetch:    fetch,
	}
}

// enqueue adds an id to the pending set unless it is already pending or
// being fetched, then tries to start work.
func (q *lookupQueue) enqueue(id model.ItemID) {
	if !id.Valid() {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if _, ok := q.queued[id]; ok {
		q.mu.Unlock()
		return
	}
	if _, ok := q.inFlight[id]; ok {
		q.mu.Unlock()
		return
	}
	q.queued[id] = struct{}{}
	q.pending = append(q.pending, id)
	q.mu.Unlock()

	q.fill()
}

// fill claims pending ids into free slots. Called after every enqueue
// and after every completion.
func (q *lookupQueue) fill() {
	for {
		q.mu.Lock()
		if q.closed || len(q.pending) == 0 || len(q.inFlight) >= q.max {
			q.mu.Unlock()
			return
		}
		id := q.pending[0]
		q.pending = q.pending[1:]
		delete(q.queued, id)
		q.inFlight[id] = struct{}{}
		q.mu.Unlock()

		go func(id model.ItemID) {
			defer q.done(id)
			q.fetch(id)
		}(id)
	}
}

func (q *lookupQueue) done(id model.ItemID) {
	q.mu.Lock()
	delete(q.inFlight, id)
	q.mu.Unlock()
	q.fill()
}

// depth reports pending plus in-flight work, for diagnostics.
func (q *lookupQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) + len(q.inFlight)
}

// close drops all pending work. In-flight fetches finish on their own;
// their results are simply ignored by then-idle callers.
func (q *lookupQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.pending = nil
	q.queued = make(map[model.ItemID]struct{})
}
