package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrLockHeld is returned by WithLock when another holder owns the lock.
var ErrLockHeld = errors.New("lock held elsewhere")

const connectTimeout = 5 * time.Second

// RedisCache is the shared cache and lock service used when REDIS_URL is set.
// Every key is namespaced with prefix so replicas of other services can share
// the instance.
type RedisCache struct {
	client redis.UniversalClient
	locks  *redsync.Redsync
	prefix string
	log    zerolog.Logger
}

// NewRedisCache connects to REDIS_URL: a redis:// URL or a comma separated
// list of URLs and host:port pairs for a cluster.
func NewRedisCache(redisURL, prefix string, log zerolog.Logger) (*RedisCache, error) {
	opts, err := parseRedisAddrs(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	log = log.With().Str("component", "redis").Logger()
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		log.Warn().Int("db", opts.DB).Msg("cluster mode ignores the database index")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().Strs("addrs", opts.Addrs).Msg("redis connected")
	return &RedisCache{
		client: client,
		locks:  redsync.New(goredis.NewPool(client)),
		prefix: prefix,
		log:    log,
	}, nil
}

// parseRedisAddrs merges every entry's address. Credentials, database and TLS
// come from the first URL that sets them.
func parseRedisAddrs(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
			continue
		case !strings.Contains(part, "://"):
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		u, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, u.Addr)
		if opts.Password == "" {
			opts.Username, opts.Password = u.Username, u.Password
		}
		if opts.DB == 0 {
			opts.DB = u.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = u.TLSConfig
		}
	}
	if len(opts.Addrs) == 0 {
		return nil, errors.New("no redis address")
	}
	return opts, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrMiss
	case err != nil:
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, expiration).Err()
}

// HealthCheck pings the server. /readyz calls it.
func (r *RedisCache) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// WithLock runs fn while holding a cluster-wide mutex. It makes a single
// attempt and returns ErrLockHeld if another replica owns the lock.
func (r *RedisCache) WithLock(ctx context.Context, name string, ttl time.Duration, fn func(ctx context.Context) error) error {
	mutex := r.locks.NewMutex(r.prefix+"lock:"+name, redsync.WithExpiry(ttl), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return ErrLockHeld
		}
		return err
	}
	defer func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			r.log.Warn().Err(err).Str("lock", name).Msg("unlock failed; lock expires on its own")
		}
	}()
	return fn(ctx)
}
