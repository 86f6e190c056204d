package kvstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// MaxRedisValueSize is the largest string Redis accepts (proto-max-bulk-len).
const MaxRedisValueSize = 512 << 20

// RedisStore keeps entries in Redis under a namespace prefix.
// Keys are namespaced as lingua:{namespace}:{key}.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore connects to Redis using a redis:// URL.
func NewRedisStore(ctx context.Context, url, namespace string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisStoreWithClient(client, namespace), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = "default"
	}
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) namespaceKey(key string) string {
	return fmt.Sprintf("lingua:%s:%s", s.namespace, key)
}

func (s *RedisStore) stripNamespace(fullKey string) string {
	return strings.TrimPrefix(fullKey, fmt.Sprintf("lingua:%s:", s.namespace))
}

// Get reads the requested keys with a single MGET.
func (s *RedisStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = s.namespaceKey(k)
	}

	vals, err := s.client.MGet(ctx, fullKeys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range vals {
		switch val := v.(type) {
		case nil:
			// missing key
		case string:
			out[s.stripNamespace(fullKeys[i])] = []byte(val)
		default:
			return nil, fmt.Errorf("unexpected redis value type %T for %s", v, keys[i])
		}
	}
	return out, nil
}

// Set writes all values inside MULTI/EXEC.
func (s *RedisStore) Set(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	for key, v := range values {
		if len(v) > MaxRedisValueSize {
			return fmt.Errorf("value for %s exceeds %d bytes", key, MaxRedisValueSize)
		}
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, v := range values {
			pipe.Set(ctx, s.namespaceKey(key), v, 0)
		}
		return nil
	})
	return err
}

// Remove deletes the given keys.
func (s *RedisStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = s.namespaceKey(k)
	}
	return s.client.Del(ctx, fullKeys...).Err()
}

// Ping verifies the server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
