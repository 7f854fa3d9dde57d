package gazetteer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/EpiAnnotator/internal/infrastructure/database/redis"
	"github.com/turtacn/EpiAnnotator/internal/testutil"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

type spyStore struct {
	inner Store
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (s *spyStore) Lookup(ctx context.Context, names []string) ([]*gtypes.Record, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string(nil), names...))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.inner.Lookup(ctx, names)
}

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) ObserveCacheLookup(hits, misses int) {
	o.hits += hits
	o.misses += misses
}

func newCachedFixture(t *testing.T) (*CachedStore, *spyStore, *countingObserver, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClientWithRDB(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), nil)
	t.Cleanup(func() { client.Close() })
	cache := redis.NewRedisCache(client, nil, redis.WithTTLJitter(0))

	spy := &spyStore{inner: fixtureStore(t)}
	obs := &countingObserver{}
	store := NewCachedStore(spy, cache,
		WithCacheTTL(time.Hour),
		WithCacheObserver(obs),
		WithCacheLogger(testutil.NewMockLogger()))
	return store, spy, obs, mr
}

func TestCachedStore_ServesRepeatLookupsFromCache(t *testing.T) {
	ctx := context.Background()
	store, spy, obs, mr := newCachedFixture(t)

	first, err := store.Lookup(ctx, []string{"Cairo", "Nowhere"})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, [][]string{{"cairo", "nowhere"}}, spy.calls)
	assert.Equal(t, 0, obs.hits)
	assert.Equal(t, 2, obs.misses)

	// names without records are cached too
	empty, err := mr.Get("epiann:lookup:nowhere")
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
	assert.Equal(t, time.Hour, mr.TTL("epiann:lookup:cairo"))

	second, err := store.Lookup(ctx, []string{"cairo", "NOWHERE"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, spy.calls, 1)
	assert.Equal(t, 2, obs.hits)

	third, err := store.Lookup(ctx, []string{"Cairo", "WA"})
	require.NoError(t, err)
	require.Len(t, third, 3)
	assert.Equal(t, []string{"wa"}, spy.calls[1])
	assert.Equal(t, testutil.WashingtonID, third[2].GeonameID)
}

func TestCachedStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	store, spy, _, mr := newCachedFixture(t)
	require.NoError(t, mr.Set("epiann:other", "kept"))

	_, err := store.Lookup(ctx, []string{"Cairo", "Nowhere"})
	require.NoError(t, err)

	n, err := store.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, mr.Exists("epiann:other"))

	_, err = store.Lookup(ctx, []string{"Cairo"})
	require.NoError(t, err)
	assert.Len(t, spy.calls, 2, "invalidated names are fetched again")

	mr.Close()
	_, err = store.Invalidate(ctx)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}

func TestCachedStore_CorruptEntryIsRefetched(t *testing.T) {
	ctx := context.Background()
	store, spy, _, mr := newCachedFixture(t)
	require.NoError(t, mr.Set("epiann:lookup:nairobi", "{not json"))

	recs, err := store.Lookup(ctx, []string{"Nairobi"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, testutil.NairobiID, recs[0].GeonameID)
	assert.Len(t, spy.calls, 1)
}

func TestCachedStore_DegradesWhenRedisIsDown(t *testing.T) {
	store, spy, _, mr := newCachedFixture(t)
	mr.Close()

	recs, err := store.Lookup(context.Background(), []string{"Kenya"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, testutil.KenyaID, recs[0].GeonameID)
	assert.Len(t, spy.calls, 1)
}

func TestCachedStore_InnerErrorPropagates(t *testing.T) {
	store, spy, _, _ := newCachedFixture(t)
	spy.err = fmt.Errorf("database gone")

	_, err := store.Lookup(context.Background(), []string{"Kenya"})
	assert.EqualError(t, err, "database gone")
}

func TestSplitByName(t *testing.T) {
	rec := &gtypes.Record{GeonameID: "1", Name: "Cairo", NamesUsed: []string{"Al Qahirah", "Cairo"}}
	got := splitByName([]*gtypes.Record{rec}, []string{"cairo", "al qahirah", "giza"})

	require.Len(t, got["cairo"], 1)
	assert.Equal(t, []string{"Cairo"}, got["cairo"][0].NamesUsed)
	require.Len(t, got["al qahirah"], 1)
	assert.Equal(t, []string{"Al Qahirah"}, got["al qahirah"][0].NamesUsed)
	assert.NotNil(t, got["giza"])
	assert.Empty(t, got["giza"])
	assert.Equal(t, []string{"Al Qahirah", "Cairo"}, rec.NamesUsed, "input untouched")
}

//Personal.AI order the ending
