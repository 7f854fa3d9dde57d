package gazetteer

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/EpiAnnotator/internal/config"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/database/sqlite"
	"github.com/turtacn/EpiAnnotator/internal/testutil"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{Gazetteer: config.GazetteerConfig{Driver: "memory"}}
	h, err := Open(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	defer h.Close()

	require.NotNil(t, h.Memory)
	assert.Nil(t, h.Importer)
	assert.Same(t, h.Memory, h.Store)

	n, err := h.InvalidateCache(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_SQLiteWithCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Gazetteer: config.GazetteerConfig{Driver: "sqlite", CacheEnabled: true},
		SQLite:    config.SQLiteConfig{Path: sqlite.MemoryPath},
		Redis:     config.RedisConfig{Addr: mr.Addr(), KeyPrefix: "test:"},
	}
	obs := &countingObserver{}
	h, err := Open(ctx, cfg, testutil.NewMockLogger(), obs)
	require.NoError(t, err)
	defer h.Close()

	require.NotNil(t, h.Importer)
	assert.Equal(t, DialectSQLite, h.Dialect)
	_, ok := h.Store.(*CachedStore)
	require.True(t, ok)

	_, err = h.Importer.ImportGeonames(ctx, strings.NewReader(testutil.GeonamesDump()))
	require.NoError(t, err)
	require.NoError(t, h.Importer.RefreshCounts(ctx))

	assert.Equal(t, []string{testutil.KenyaID}, ids(t, h.Store, "Republic of Kenya"))
	assert.Equal(t, 1, obs.misses)
	assert.True(t, mr.Exists("test:lookup:republic of kenya"))

	n, err := h.InvalidateCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, mr.Exists("test:lookup:republic of kenya"))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Gazetteer: config.GazetteerConfig{Driver: "oracle"}}, nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGazetteerDriver))

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	cfg := &config.Config{
		Gazetteer: config.GazetteerConfig{Driver: "memory", CacheEnabled: true},
		Redis:     config.RedisConfig{Addr: addr},
	}
	_, err = Open(context.Background(), cfg, nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGazetteerUnavailable))
}

//Personal.AI order the ending
