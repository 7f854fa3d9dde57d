package gazetteer

import (
	"context"
	"sync"

	"github.com/turtacn/EpiAnnotator/pkg/errors"
	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

// MemoryStore is an in-process gazetteer. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*gtypes.Record
	// byName maps a normalized name to geonameid to the names as added
	byName map[string]map[string][]string
	counts map[string]map[string]struct{}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*gtypes.Record),
		byName:  make(map[string]map[string][]string),
		counts:  make(map[string]map[string]struct{}),
	}
}

// Add registers rec under its name, its ASCII name and the extra names.
// Adding a record again replaces its fields and keeps earlier names. A zero
// NameCount is replaced by the number of distinct names registered.
func (m *MemoryStore) Add(rec *gtypes.Record, names ...string) error {
	if rec == nil || rec.GeonameID == "" {
		return errors.New(errors.ErrCodeGazetteerRecordBad, "record needs a geonameid")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := rec.Clone()
	c.NamesUsed = nil
	m.records[c.GeonameID] = c

	all := append([]string{rec.Name, rec.ASCIIName}, names...)
	for _, n := range all {
		key := gtypes.NormalizeName(n)
		if key == "" {
			continue
		}
		if m.counts[c.GeonameID] == nil {
			m.counts[c.GeonameID] = make(map[string]struct{})
		}
		if _, dup := m.counts[c.GeonameID][n]; dup {
			continue
		}
		m.counts[c.GeonameID][n] = struct{}{}
		if m.byName[key] == nil {
			m.byName[key] = make(map[string][]string)
		}
		m.byName[key][c.GeonameID] = append(m.byName[key][c.GeonameID], n)
	}
	return nil
}

// Len returns the number of records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Lookup returns the records carrying any of names, ordered by GeonameID.
func (m *MemoryStore) Lookup(ctx context.Context, names []string) ([]*gtypes.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCanceled, "gazetteer lookup canceled")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := newRecordSet()
	for _, key := range uniqueNames(names) {
		for id, used := range m.byName[key] {
			rec := m.records[id].Clone()
			rec.NamesUsed = used
			if rec.NameCount == 0 {
				rec.NameCount = len(m.counts[id])
			}
			set.add(rec)
		}
	}
	return set.records(), nil
}

//Personal.AI order the ending
