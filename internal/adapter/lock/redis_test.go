package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_UnreachableRedisReturnsError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	log, _ := test.NewNullLogger()
	locker := NewRedisLocker(rdb, 0, log)
	assert.Equal(t, defaultTTL, locker.ttl)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	release, err := locker.Lock(ctx, "cascade:ws:acct")
	require.Error(t, err)
	assert.Nil(t, release)
	assert.Contains(t, err.Error(), "cascade:ws:acct")
}

func TestNewRedisClient_PingFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	rdb, err := NewRedisClient(ctx, "127.0.0.1:1")
	assert.Error(t, err)
	assert.Nil(t, rdb)
}
