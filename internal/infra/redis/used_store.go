package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// UsedStore keeps the set of already-served question IDs in Redis so repeat
// avoidance survives restarts and is shared across instances. IDs live in a
// single SET; the TTL is refreshed on every write so an idle player's history
// eventually expires on its own.
type UsedStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewUsedStore(client *redis.Client, namespace string, ttl time.Duration) *UsedStore {
	if namespace == "" {
		namespace = "default"
	}
	return &UsedStore{
		client: client,
		key:    "quiz:used:" + namespace,
		ttl:    ttl,
	}
}

func (s *UsedStore) MarkUsed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, s.key, members...)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *UsedStore) Used(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *UsedStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
