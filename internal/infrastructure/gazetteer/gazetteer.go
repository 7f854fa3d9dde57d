// Package gazetteer answers place-name lookups for the geoname engine. A
// lookup maps normalized names to the gazetteer records carrying them as an
// alternate name; each record lists the names that matched.
//
// Backends: SQLStore over SQLite or PostgreSQL, MemoryStore for tests and
// small fixtures, and CachedStore which fronts any of them with Redis.
package gazetteer

import (
	"context"

	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

// Store looks up gazetteer records by name.
type Store interface {
	Lookup(ctx context.Context, names []string) ([]*gtypes.Record, error)
}

// CacheObserver is told how many names each cached lookup found in the
// cache.
type CacheObserver interface {
	ObserveCacheLookup(hits, misses int)
}

type nopCacheObserver struct{}

func (nopCacheObserver) ObserveCacheLookup(int, int) {}

// uniqueNames normalizes names and drops empty and repeated ones, keeping
// first-seen order.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := gtypes.NormalizeName(n)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// recordSet merges records by GeonameID.
type recordSet struct {
	byID map[string]*gtypes.Record
	list []*gtypes.Record
}

func newRecordSet() *recordSet {
	return &recordSet{byID: make(map[string]*gtypes.Record)}
}

func (s *recordSet) add(rec *gtypes.Record) {
	if prev, ok := s.byID[rec.GeonameID]; ok {
		prev.MergeNamesUsed(rec.NamesUsed...)
		if rec.NameCount > prev.NameCount {
			prev.NameCount = rec.NameCount
		}
		return
	}
	c := rec.Clone()
	c.NamesUsed = nil
	c.MergeNamesUsed(rec.NamesUsed...)
	s.byID[c.GeonameID] = c
	s.list = append(s.list, c)
}

// records returns the merged records ordered by GeonameID.
func (s *recordSet) records() []*gtypes.Record {
	gtypes.SortRecords(s.list)
	return s.list
}

//Personal.AI order the ending
