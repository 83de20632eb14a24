package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each room document in one hash, one hash field per
// top-level document field. HSET is last-writer-wins per field, which is
// the merge behavior the initializer protocol relies on.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping document store: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Fields(ctx context.Context, roomID string) (map[string]struct{}, error) {
	keys, err := s.client.HKeys(ctx, docKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list document fields: %w", err)
	}

	fields := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		fields[key] = struct{}{}
	}

	return fields, nil
}

func (s *RedisStore) SetField(ctx context.Context, roomID, field, value string) error {
	if err := s.client.HSet(ctx, docKey(roomID), field, value).Err(); err != nil {
		return fmt.Errorf("set document field %s: %w", field, err)
	}
	return nil
}

func (s *RedisStore) GetField(ctx context.Context, roomID, field string) (string, error) {
	value, err := s.client.HGet(ctx, docKey(roomID), field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("get document field %s: %w", field, err)
	}
	return value, nil
}

func docKey(roomID string) string {
	return "room:" + roomID + ":doc"
}
