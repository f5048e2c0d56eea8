package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore shares sessions between instances. Expiry is delegated to Redis key TTLs.
type RedisStore struct {
	client   redis.Cmdable
	newToken func() string
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, newToken: newToken}
}

func (s *RedisStore) Issue(ctx context.Context, identity domain.Identity, ttl time.Duration) (string, error) {
	token := s.newToken()
	if ttl <= 0 {
		// Redis treats a zero TTL as "never expires"; such a session is already dead.
		return token, nil
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(token), string(payload), ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Lookup(ctx context.Context, token string) (domain.Identity, bool, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Identity{}, false, nil
		}
		return domain.Identity{}, false, fmt.Errorf("load session: %w", err)
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(data), &identity); err != nil {
		return domain.Identity{}, false, fmt.Errorf("decode session: %w", err)
	}
	return identity, true, nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return "session:" + token
}

var _ Store = (*RedisStore)(nil)
