package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
)

// KeyPrefix is followed by the user ID. The mobile app writes these keys.
const KeyPrefix = "device_token:"

// Deletes the key only while it holds the stale token, so a token the app
// re-registered in the meantime survives.
var deleteIfEquals = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TokenStore reads device tokens from Redis.
type TokenStore struct {
	client redis.Cmdable
}

func NewTokenStore(client redis.Cmdable) *TokenStore {
	return &TokenStore{client: client}
}

func key(userID string) string {
	return KeyPrefix + userID
}

func (s *TokenStore) Get(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && token == "") {
		return "", apperrors.NotFound("device token", userID)
	}
	if err != nil {
		return "", fmt.Errorf("get device token of %s: %w", userID, err)
	}
	return token, nil
}

func (s *TokenStore) Delete(ctx context.Context, userID, token string) error {
	if err := deleteIfEquals.Run(ctx, s.client, []string{key(userID)}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete device token of %s: %w", userID, err)
	}
	return nil
}
