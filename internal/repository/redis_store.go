package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPreferenceRepo keeps each admin's preferences in one Redis hash,
// one field per entry.
type RedisPreferenceRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisPreferenceRepo(rdb *redis.Client, prefix string) *RedisPreferenceRepo {
	if prefix == "" {
		prefix = "prefs"
	}
	return &RedisPreferenceRepo{rdb: rdb, prefix: prefix}
}

func (r *RedisPreferenceRepo) key(scope string) string { return r.prefix + ":" + scope }

// Load returns every field of the scope's hash.
func (r *RedisPreferenceRepo) Load(ctx context.Context, scope string) (map[string]string, error) {
	if r.rdb == nil {
		return nil, ErrUnavailable
	}
	return r.rdb.HGetAll(ctx, r.key(scope)).Result()
}

// Save writes all entries with a single HSET.
func (r *RedisPreferenceRepo) Save(ctx context.Context, scope string, entries map[string]string) error {
	if r.rdb == nil {
		return ErrUnavailable
	}
	if len(entries) == 0 {
		return nil
	}
	return r.rdb.HSet(ctx, r.key(scope), entries).Err()
}

// RedisSessionRepo stores console sessions as Redis hashes that expire with
// the session.
type RedisSessionRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisSessionRepo(rdb *redis.Client, prefix string) *RedisSessionRepo {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisSessionRepo{rdb: rdb, prefix: prefix}
}

func (r *RedisSessionRepo) key(k string) string { return r.prefix + ":" + k }

// Put replaces the session hash and sets its TTL atomically.
func (r *RedisSessionRepo) Put(ctx context.Context, key string, entries map[string]string, ttl time.Duration) error {
	if r.rdb == nil {
		return ErrUnavailable
	}
	k := r.key(key)
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, k)
		p.HSet(ctx, k, entries)
		if ttl > 0 {
			p.Expire(ctx, k, ttl)
		}
		return nil
	})
	return err
}

// Get returns the session's entries; a missing session is an empty map.
func (r *RedisSessionRepo) Get(ctx context.Context, key string) (map[string]string, error) {
	if r.rdb == nil {
		return nil, ErrUnavailable
	}
	return r.rdb.HGetAll(ctx, r.key(key)).Result()
}

// Delete removes the session.
func (r *RedisSessionRepo) Delete(ctx context.Context, key string) error {
	if r.rdb == nil {
		return ErrUnavailable
	}
	return r.rdb.Del(ctx, r.key(key)).Err()
}
