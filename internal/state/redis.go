package state

import (
	"context"
	"encoding/json"

	goredis "github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"SignalSentinel/internal/model"
)

// RedisBackend stores the whole state map as one JSON value, so every write is a
// single atomic SET.
type RedisBackend struct {
	client *goredis.Client
	key    string
}

// NewRedisBackend connects to addr and stores state under key.
func NewRedisBackend(addr, password string, db int, key string) *RedisBackend {
	return &RedisBackend{
		client: goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		key: key,
	}
}

func (r *RedisBackend) Name() string { return "redis" }

// Ping checks connectivity.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Read(ctx context.Context) (model.StateMap, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %s", r.key)
	}
	var m model.StateMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, errors.Wrap(err, "decode redis state")
	}
	if m == nil {
		m = model.StateMap{}
	}
	return m, true, nil
}

func (r *RedisBackend) Write(ctx context.Context, m model.StateMap) error {
	data, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", r.key)
	}
	return nil
}

// Close releases the connection pool.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
