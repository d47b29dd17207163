package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr is host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(cfg RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Redis connection failed", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
	)

	return client, nil
}

const (
	tagKeyPrefix        = "cache:tag:"
	tagVersionKeyPrefix = "cache:tagver:"

	entryVersionField = "v"
	entryDataField    = "d"

	leaseKeyPrefix = "lease:"
)

// RedisTagCache is a Redis cache where every key can belong to a tag. A tag
// is a Redis set of member keys plus a version counter; each entry is a hash
// holding its data and the tag version it was written against.
type RedisTagCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTagCache builds the tag cache.
func NewRedisTagCache(client *redis.Client, logger *zap.Logger) repository.TagCacheRepository {
	return &RedisTagCache{
		client: client,
		logger: logger,
	}
}

func (r *RedisTagCache) Get(ctx context.Context, key, tag string) (string, error) {
	var (
		entry   *redis.SliceCmd
		version *redis.StringCmd
	)
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		entry = pipe.HMGet(ctx, key, entryVersionField, entryDataField)
		version = pipe.Get(ctx, tagVersionKeyPrefix+tag)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Error("Redis Get failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return "", err
	}

	fields := entry.Val()
	data, ok := fields[1].(string)
	if !ok {
		return "", redis.Nil
	}

	current, err := parseVersion(version.Val())
	if err != nil {
		return "", err
	}
	written, _ := fields[0].(string)
	if v, err := parseVersion(written); err != nil || v < current {
		r.logger.Debug("Dropping cache entry behind its tag version",
			zap.String("key", key),
			zap.String("tag", tag),
		)
		return "", redis.Nil
	}

	return data, nil
}

func (r *RedisTagCache) Version(ctx context.Context, tag string) (int64, error) {
	raw, err := r.client.Get(ctx, tagVersionKeyPrefix+tag).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		r.logger.Error("Redis tag version read failed",
			zap.String("tag", tag),
			zap.Error(err),
		)
		return 0, err
	}
	return parseVersion(raw)
}

// SetIfVersion watches the tag version so an InvalidateTag that lands between
// the caller's Version read and this write aborts the transaction.
func (r *RedisTagCache) SetIfVersion(ctx context.Context, key, value string, ttl time.Duration, tag string, version int64) (bool, error) {
	versionKey := tagVersionKeyPrefix + tag
	stored := true

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, versionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		current, err := parseVersion(raw)
		if err != nil {
			return err
		}
		if current != version {
			stored = false
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, entryVersionField, version, entryDataField, value)
			pipe.Expire(ctx, key, ttl)
			pipe.SAdd(ctx, tagKeyPrefix+tag, key)
			return nil
		})
		return err
	}, versionKey)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Redis Set failed",
			zap.String("key", key),
			zap.String("tag", tag),
			zap.Error(err),
		)
		return false, err
	}
	return stored, nil
}

// InvalidateTag bumps the tag version, then deletes every key registered
// under tag and the tag itself.
func (r *RedisTagCache) InvalidateTag(ctx context.Context, tag string) error {
	tagKey := tagKeyPrefix + tag

	keys, err := r.client.SMembers(ctx, tagKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Error("Redis SMembers failed",
			zap.String("tag", tag),
			zap.Error(err),
		)
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, tagVersionKeyPrefix+tag)
		pipe.Del(ctx, append(keys, tagKey)...)
		return nil
	})
	if err != nil {
		r.logger.Error("Redis tag invalidation failed",
			zap.String("tag", tag),
			zap.Strings("keys", keys),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *RedisTagCache) IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}

func parseVersion(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cache version %q: %w", raw, err)
	}
	return v, nil
}

// RedisLease implements leases with SET NX EX.
type RedisLease struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLease builds the lease store.
func NewRedisLease(client *redis.Client, logger *zap.Logger) repository.LeaseRepository {
	return &RedisLease{
		client: client,
		logger: logger,
	}
}

func (r *RedisLease) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, leaseKeyPrefix+key, 1, ttl).Result()
	if err != nil {
		r.logger.Error("Redis lease failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return false, err
	}
	return ok, nil
}
