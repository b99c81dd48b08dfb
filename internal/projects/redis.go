package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisStoreConfig configures the Redis-backed project list cache.
type RedisStoreConfig struct {
	Namespace string
	TTL       time.Duration
}

// RedisStore keeps the list as JSON under {namespace}:projects:{host}.
type RedisStore struct {
	client  redisCommander
	closeFn func() error
	key     string
	ttl     time.Duration
}

func NewRedisStore(client redis.UniversalClient, gitlabURL string, cfg RedisStoreConfig) *RedisStore {
	closeFn := func() error { return nil }
	if client != nil {
		closeFn = client.Close
	}
	return newRedisStoreFromCommander(client, closeFn, gitlabURL, cfg)
}

func newRedisStoreFromCommander(client redisCommander, closeFn func() error, gitlabURL string, cfg RedisStoreConfig) *RedisStore {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "labslurp"
	}
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	return &RedisStore{
		client:  client,
		closeFn: closeFn,
		key:     namespace + ":projects:" + HostKey(gitlabURL),
		ttl:     cfg.TTL,
	}
}

func (s *RedisStore) Close() error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) Load(ctx context.Context) (*List, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("redis store is not initialized")
	}
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read project list: %w", err)
	}

	var list List
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode project list: %w", err)
	}
	return &list, nil
}

func (s *RedisStore) Save(ctx context.Context, list *List) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("redis store is not initialized")
	}
	if list == nil {
		return fmt.Errorf("save project list: nil list")
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode project list: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("write project list: %w", err)
	}
	return nil
}
