package gazetteer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/turtacn/EpiAnnotator/internal/infrastructure/database/redis"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
	"golang.org/x/sync/singleflight"
)

// CacheKeyPrefix namespaces lookup entries inside the cache prefix.
const CacheKeyPrefix = "lookup:"

// CachedStore caches the records of every looked-up name, including names
// with no records. Cache failures degrade to the inner store.
type CachedStore struct {
	inner    Store
	cache    redis.Cache
	ttl      time.Duration
	logger   logging.Logger
	observer CacheObserver
	group    singleflight.Group
}

// CachedOption configures a CachedStore.
type CachedOption func(*CachedStore)

// WithCacheTTL sets the entry lifetime; 0 uses the cache default.
func WithCacheTTL(ttl time.Duration) CachedOption {
	return func(s *CachedStore) { s.ttl = ttl }
}

// WithCacheLogger sets the logger.
func WithCacheLogger(log logging.Logger) CachedOption {
	return func(s *CachedStore) { s.logger = log }
}

// WithCacheObserver receives hit and miss counts.
func WithCacheObserver(o CacheObserver) CachedOption {
	return func(s *CachedStore) { s.observer = o }
}

// NewCachedStore fronts inner with cache.
func NewCachedStore(inner Store, cache redis.Cache, opts ...CachedOption) *CachedStore {
	s := &CachedStore{inner: inner, cache: cache, logger: logging.NewNopLogger(), observer: nopCacheObserver{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(name string) string { return CacheKeyPrefix + name }

// Invalidate drops every cached lookup and returns how many entries went.
// Imports call it because cached misses would hide new records.
func (s *CachedStore) Invalidate(ctx context.Context) (int64, error) {
	n, err := s.cache.DeleteByPrefix(ctx, CacheKeyPrefix)
	if err != nil {
		return n, errors.Wrap(err, errors.ErrCodeCacheError, "failed to invalidate gazetteer cache")
	}
	s.logger.Info("gazetteer cache invalidated", logging.Int64("entries", n))
	return n, nil
}

// Lookup serves cached names from the cache and the rest from the inner
// store, then caches the latter per name.
func (s *CachedStore) Lookup(ctx context.Context, names []string) ([]*gtypes.Record, error) {
	names = uniqueNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = cacheKey(n)
	}
	raw, err := s.cache.MGet(ctx, keys)
	if err != nil {
		s.logger.Warn("gazetteer cache read failed", logging.Err(err))
		raw = nil
	}

	set := newRecordSet()
	var misses []string
	for i, n := range names {
		data, ok := raw[keys[i]]
		if !ok {
			misses = append(misses, n)
			continue
		}
		var recs []*gtypes.Record
		if err := json.Unmarshal(data, &recs); err != nil {
			s.logger.Warn("gazetteer cache entry corrupt", logging.String("name", n), logging.Err(err))
			misses = append(misses, n)
			continue
		}
		for _, rec := range recs {
			set.add(rec)
		}
	}
	s.observer.ObserveCacheLookup(len(names)-len(misses), len(misses))

	if len(misses) > 0 {
		fetched, err := s.fetch(ctx, misses)
		if err != nil {
			return nil, err
		}
		for _, rec := range fetched {
			set.add(rec)
		}
	}
	return set.records(), nil
}

// fetch queries the inner store once per distinct miss set, even across
// concurrent callers, and writes the results back.
func (s *CachedStore) fetch(ctx context.Context, misses []string) ([]*gtypes.Record, error) {
	v, err, _ := s.group.Do(strings.Join(misses, "\x00"), func() (interface{}, error) {
		fetched, err := s.inner.Lookup(ctx, misses)
		if err != nil {
			return nil, err
		}
		items := make(map[string]interface{}, len(misses))
		for name, recs := range splitByName(fetched, misses) {
			items[cacheKey(name)] = recs
		}
		if err := s.cache.MSet(ctx, items, s.ttl); err != nil {
			s.logger.Warn("gazetteer cache write failed", logging.Err(err))
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*gtypes.Record), nil
}

// splitByName returns, for every name, the records that matched it with
// NamesUsed narrowed to the spellings of that name. Names without records
// map to an empty slice.
func splitByName(records []*gtypes.Record, names []string) map[string][]*gtypes.Record {
	out := make(map[string][]*gtypes.Record, len(names))
	for _, n := range names {
		out[n] = []*gtypes.Record{}
	}
	for _, rec := range records {
		byName := make(map[string][]string)
		for _, used := range rec.NamesUsed {
			key := gtypes.NormalizeName(used)
			if _, wanted := out[key]; wanted {
				byName[key] = append(byName[key], used)
			}
		}
		for key, used := range byName {
			c := rec.Clone()
			c.NamesUsed = used
			out[key] = append(out[key], c)
		}
	}
	return out
}

//Personal.AI order the ending
