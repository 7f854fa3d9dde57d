package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/EpiAnnotator/internal/config"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/EpiAnnotator/pkg/errors"
)

func TestNewClient_Success(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	client, err := NewClient(config.RedisConfig{Addr: addr}, logging.NewNopLogger())
	assert.Nil(t, client)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeGazetteerUnavailable))
}

func TestClient_Operations(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "foo", "bar", 0).Err())
	val, err := client.Get(ctx, "foo").Result()
	assert.NoError(t, err)
	assert.Equal(t, "bar", val)

	vals, err := client.MGet(ctx, "foo", "missing").Result()
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{"bar", nil}, vals)

	deleted, err := client.Del(ctx, "foo").Result()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestClient_Close(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close(), "second close is a no-op")

	assert.Equal(t, ErrClientClosed, client.Get(context.Background(), "foo").Err())
	assert.Equal(t, ErrClientClosed, client.Ping(context.Background()))
}

//Personal.AI order the ending
