// Package refdata loads the precomputed item name index built from
// bulk game-definition data. It is the resolver's free, always
// available first pass before the persisted cache or external search.
package refdata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/DominusFuror/tradefury/internal/domain/identity"
	"github.com/DominusFuror/tradefury/internal/domain/model"
)

// NameIndex is an immutable normalizedName -> id table. It satisfies
// identity.RefIndex.
type NameIndex struct {
	byName map[string]model.ItemID
}

// LookupName implements identity.RefIndex. The argument is expected to
// be already normalized.
func (x *NameIndex) LookupName(normalized string) (model.ItemID, bool) {
	id, ok := x.byName[normalized]
	return id, ok
}

// Len returns the number of indexed names.
func (x *NameIndex) Len() int { return len(x.byName) }

// Load reads a definitions file of "id<TAB>name" lines. Blank lines
// and lines starting with '#' are skipped; unreadable rows are skipped
// rather than failing the whole load.
func Load(path string) (*NameIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference data: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses definitions from any reader; see Load.
func Read(r io.Reader) (*NameIndex, error) {
	idx := &NameIndex{byName: make(map[string]model.ItemID)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rawID, rawName, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		norm := identity.Normalize(rawName)
		if norm == "" {
			continue
		}
		// First definition wins; later duplicates are ambiguous.
		if _, seen := idx.byName[norm]; !seen {
			idx.byName[norm] = model.ItemID(n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read reference data: %w", err)
	}
	return idx, nil
}
