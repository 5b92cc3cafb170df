package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrAlreadyClaimed reports that another worker holds or completed the key.
var ErrAlreadyClaimed = errors.New("already claimed")

// Claim is exclusive ownership of one key. An unfinished claim expires on
// its own, so a worker that dies mid-task only blocks retries briefly.
type Claim interface {
	// Complete keeps the key claimed long enough to skip redeliveries of
	// work that is already done.
	Complete(ctx context.Context) error
	// Release gives the key back so the work can be retried at once.
	Release(ctx context.Context) error
}

type Claimer interface {
	Claim(ctx context.Context, key string) (Claim, error)
}

// RedisClaimer claims keys with a redis lock held for inFlight while the
// work runs and extended to done once it succeeds.
type RedisClaimer struct {
	locker   *redislock.Client
	prefix   string
	inFlight time.Duration
	done     time.Duration
}

func NewRedisClaimer(client *redis.Client, prefix string, inFlight, done time.Duration) *RedisClaimer {
	return &RedisClaimer{locker: redislock.New(client), prefix: prefix, inFlight: inFlight, done: done}
}

func (c *RedisClaimer) Claim(ctx context.Context, key string) (Claim, error) {
	lock, err := c.locker.Obtain(ctx, c.prefix+key, c.inFlight, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrAlreadyClaimed
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", c.prefix+key, err)
	}
	return &redisClaim{lock: lock, done: c.done}, nil
}

type redisClaim struct {
	lock *redislock.Lock
	done time.Duration
}

func (c *redisClaim) Complete(ctx context.Context) error {
	if err := c.lock.Refresh(ctx, c.done, nil); err != nil {
		return fmt.Errorf("extend lock %s: %w", c.lock.Key(), err)
	}
	return nil
}

func (c *redisClaim) Release(ctx context.Context) error {
	return c.lock.Release(ctx)
}
