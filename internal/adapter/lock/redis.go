// Package lock provides the best-effort per-account lock used by the checkpoint cascade.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultTTL      = 30 * time.Second
	retryBackoff    = 100 * time.Millisecond
	maxRetries      = 5
	releaseDeadline = 2 * time.Second
)

// RedisLocker obtains short-lived locks from Redis via redislock
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisLocker creates a locker on top of an existing Redis client.
// A non-positive ttl falls back to 30s.
func NewRedisLocker(rdb redis.Scripter, ttl time.Duration, log logrus.FieldLogger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		log:    log,
	}
}

// Lock obtains the key, retrying briefly while another holder has it.
// The returned func releases the lock; release failures are only logged.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryBackoff), maxRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("lock %s held elsewhere: %w", key, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseDeadline)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.WithFields(logrus.Fields{
				"field": "Lock",
				"key":   key,
			}).Warn("failed to release redis lock: " + err.Error())
		}
	}, nil
}
