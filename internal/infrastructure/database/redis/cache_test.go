package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/EpiAnnotator/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	client := NewClientWithRDB(db, logging.NewNopLogger())
	s.cache = NewRedisCache(client, logging.NewNopLogger(), WithPrefix("test:"), WithTTLJitter(0))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type testStruct struct {
	Name string `json:"name"`
	Pop  int    `json:"pop"`
}

func (s *CacheTestSuite) TestGet_CacheHit() {
	val := testStruct{Name: "Cairo", Pop: 7734614}
	bytes, _ := json.Marshal(val)

	s.mock.ExpectGet("test:key1").SetVal(string(bytes))

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:key1").RedisNil()

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestGet_Error() {
	s.mock.ExpectGet("test:key1").SetErr(errors.New("connection reset"))

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	assert.NotEqual(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	s.mock.ExpectGet("test:key1").SetVal("{not json")

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_UsesDefaultTTL() {
	val := testStruct{Name: "Giza", Pop: 2443203}
	bytes, _ := json.Marshal(val)

	s.mock.ExpectSet("test:key1", bytes, 24*time.Hour).SetVal("OK")

	assert.NoError(s.T(), s.cache.Set(context.Background(), "key1", val, 0))
}

func (s *CacheTestSuite) TestMGet_ReturnsPresentKeys() {
	s.mock.ExpectMGet("test:a", "test:b").SetVal([]interface{}{"[1]", nil})

	got, err := s.cache.MGet(context.Background(), []string{"a", "b"})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), map[string][]byte{"a": []byte("[1]")}, got)
}

func (s *CacheTestSuite) TestMGet_Empty() {
	got, err := s.cache.MGet(context.Background(), nil)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

func (s *CacheTestSuite) TestDelete_Success() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)

	assert.NoError(s.T(), s.cache.Delete(context.Background(), "k1", "k2"))
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:lookup:*", 100).SetVal([]string{"test:lookup:cairo"}, 0)
	s.mock.ExpectDel("test:lookup:cairo").SetVal(1)

	n, err := s.cache.DeleteByPrefix(context.Background(), "lookup:")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), n)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestJitterTTL_StaysWithinBounds(t *testing.T) {
	c := &redisCache{jitter: 0.1}
	for i := 0; i < 100; i++ {
		got := c.jitterTTL(time.Hour)
		assert.GreaterOrEqual(t, got, 54*time.Minute)
		assert.LessOrEqual(t, got, 66*time.Minute)
	}
	assert.Equal(t, time.Duration(0), c.jitterTTL(0))
}

//Personal.AI order the ending
