package progress

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/career-guide/internal/assessment"
)

const seenKeyPrefix = "guide:seen:"

// RedisStore keeps each (user, stream) seen set in a Redis set.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed seen store.
func NewRedisStore(client redis.UniversalClient) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &RedisStore{client: client}, nil
}

// SeenKey is the Redis key for a user's seen set. The user ID is hashed so
// external identifiers never appear in key names.
func SeenKey(userID string, stream assessment.Stream) string {
	sum := blake2b.Sum256([]byte(userID))
	return seenKeyPrefix + string(stream) + ":" + hex.EncodeToString(sum[:])
}

func (s *RedisStore) Seen(ctx context.Context, userID string, stream assessment.Stream) (assessment.SeenSet, error) {
	ids, err := s.client.SMembers(ctx, SeenKey(userID, stream)).Result()
	if err != nil {
		return nil, fmt.Errorf("read seen set: %w", err)
	}
	return assessment.NewSeenSet(ids...), nil
}

func (s *RedisStore) MarkSeen(ctx context.Context, userID string, stream assessment.Stream, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	members := make([]any, len(questionIDs))
	for i, id := range questionIDs {
		members[i] = id
	}
	if err := s.client.SAdd(ctx, SeenKey(userID, stream), members...).Err(); err != nil {
		return fmt.Errorf("add to seen set: %w", err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context, userID string, stream assessment.Stream) error {
	if err := s.client.Del(ctx, SeenKey(userID, stream)).Err(); err != nil {
		return fmt.Errorf("reset seen set: %w", err)
	}
	return nil
}
