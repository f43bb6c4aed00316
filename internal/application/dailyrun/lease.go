package dailyrun

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLeaseHeld means another orchestrator run holds the lease.
var ErrLeaseHeld = errors.New("daily run lease already held")

// Locker serializes orchestrator runs so two runs can never race on the same
// nodes and investments, whatever dates they were invoked for.
type Locker interface {
	// Acquire takes the lease for key, returning a release func, or
	// ErrLeaseHeld when another holder exists.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RedisLocker is the multi-process lease: SET NX with a TTL so a crashed run
// cannot wedge the schedule. Release only deletes the key when the token
// still matches this holder.
type RedisLocker struct {
	Rdb *redis.Client
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	ok, err := l.Rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLeaseHeld
	}

	release := func() {
		current, err := l.Rdb.Get(context.Background(), key).Result()
		if err != nil || current != token {
			return
		}
		if err := l.Rdb.Del(context.Background(), key).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("dailyrun: lease release failed, TTL will reclaim it")
		}
	}
	return release, nil
}

// LocalLocker is the in-process fallback for single-instance deployments and
// tests.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return nil, ErrLeaseHeld
	}
	l.held[key] = true

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}
