package identity

import (
	"sync"

	"github.com/DominusFuror/tradefury/internal/domain/model"
)

// Snapshot is the persisted form of the index, written as one JSON
// blob under the identity-cache key.
type Snapshot struct {
	NameToID map[string]model.ItemID `json:"nameToId"`
	IDToName map[model.ItemID]string `json:"idToName"`
}

// Index is the bidirectional normalizedName <-> id cache. For every
// stored pair, idToName[id] == name and nameToID[Normalize(name)] == id;
// every mutation preserves that as a unit under the lock.
type Index struct {
	mu       sync.RWMutex
	nameToID map[string]model.ItemID
	idToName map[model.ItemID]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		nameToID: make(map[string]model.ItemID),
		idToName: make(map[model.ItemID]string),
	}
}

// Lookup returns the id cached for a display name, normalizing first.
func (x *Index) Lookup(name string) (model.ItemID, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	id, ok := x.nameToID[Normalize(name)]
	return id, ok
}

// NameOf returns the display name cached for an id.
func (x *Index) NameOf(id model.ItemID) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	name, ok := x.idToName[id]
	return name, ok
}

// Len returns the number of cached pairs.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.idToName)
}

// put stores a (id, name) pair learned from a trusted or resolved
// source. It refuses to steal a name already owned by a different id;
// reassignment goes through override. Returns whether the cache changed.
func (x *Index) put(id model.ItemID, name string) bool {
	norm := Normalize(name)
	if !id.Valid() || norm == "" {
		return false
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if owner, ok := x.nameToID[norm]; ok && owner != id {
		return false
	}
	if current, ok := x.idToName[id]; ok {
		if current == name {
			return false
		}
		delete(x.nameToID, Normalize(current))
	}
	x.idToName[id] = name
	x.nameToID[norm] = id
	return true
}

// OverrideReport describes the state an override displaced.
type OverrideReport struct {
	// PreviousName is the name the id carried before, empty if none.
	PreviousName string `json:"previousName,omitempty"`
	// PreviousOwnerID is the id that owned the (normalized) name
	// before, zero when the name was unowned. That id's reverse
	// mapping is removed as part of the override.
	PreviousOwnerID model.ItemID `json:"previousOwnerId,omitempty"`
}

// override force-assigns name to id, reporting rather than hiding the
// mappings it displaces. The bijection holds afterwards: no other id
// maps to the normalized name.
func (x *Index) override(id model.ItemID, name string) (OverrideReport, bool) {
	norm := Normalize(name)

	x.mu.Lock()
	defer x.mu.Unlock()

	var rep OverrideReport
	if current, ok := x.idToName[id]; ok && current != name {
		rep.PreviousName = current
	}
	if owner, ok := x.nameToID[norm]; ok && owner != id {
		rep.PreviousOwnerID = owner
		delete(x.idToName, owner)
	}

	changed := x.idToName[id] != name || x.nameToID[norm] != id
	if current, ok := x.idToName[id]; ok && current != name {
		delete(x.nameToID, Normalize(current))
	}
	x.idToName[id] = name
	x.nameToID[norm] = id
	return rep, changed
}

// snapshot copies the maps for persistence.
func (x *Index) snapshot() Snapshot {
	x.mu.RLock()
	defer x.mu.RUnlock()

	s := Snapshot{
		NameToID: make(map[string]model.ItemID, len(x.nameToID)),
		IDToName: make(map[model.ItemID]string, len(x.idToName)),
	}
	for k, v := range x.nameToID {
		s.NameToID[k] = v
	}
	for k, v := range x.idToName {
		s.IDToName[k] = v
	}
	return s
}

// hydrate replaces the cache with a persisted snapshot, re-deriving the
// forward map from the reverse one so a hand-edited or stale blob can
// never leave the two sides inconsistent.
func (x *Index) hydrate(s Snapshot) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.nameToID = make(map[string]model.ItemID, len(s.IDToName))
	x.idToName = make(map[model.ItemID]string, len(s.IDToName))
	for id, name := range s.IDToName {
		if !id.Valid() || Normalize(name) == "" {
			continue
		}
		x.idToName[id] = name
		x.nameToID[Normalize(name)] = id
	}
}
