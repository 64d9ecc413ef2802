package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/securevote/election-system/internal/core/domain"
)

// CodeStore holds live one-time codes and verified-channel markers in Redis.
//
// Key formats:
//
//	code:<channel>:<identifier>      → the live code (TTL = code lifetime)
//	verified:<channel>:<identifier>  → marker written after a successful verify
//
// SET on an existing code key replaces it and re-arms the TTL, which gives the
// replace-on-issue semantics for free; expiry handles the hard TTL without any
// explicit check on the verify path.
type CodeStore struct {
	client *redis.Client
}

// NewCodeStore creates a CodeStore wrapping the given Redis client.
func NewCodeStore(client *redis.Client) *CodeStore {
	return &CodeStore{client: client}
}

// consumeScript burns the code only on a match, atomically: two concurrent
// verifies with the correct code cannot both see 1.
// Returns 0 = no live code, 1 = consumed, 2 = mismatch (code stays live).
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v == false then
  return 0
end
if v == ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
return 2
`)

func (s *CodeStore) Put(ctx context.Context, channel domain.Channel, identifier, code string, ttl time.Duration) error {
	return s.client.Set(ctx, codeKey(channel, identifier), code, ttl).Err()
}

func (s *CodeStore) Consume(ctx context.Context, channel domain.Channel, identifier, code string) error {
	res, err := consumeScript.Run(ctx, s.client, []string{codeKey(channel, identifier)}, code).Int()
	if err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	switch res {
	case 1:
		return nil
	case 2:
		return domain.ErrInvalidCode
	default:
		return domain.ErrNoActiveCode
	}
}

func (s *CodeStore) MarkVerified(ctx context.Context, channel domain.Channel, identifier string, ttl time.Duration) error {
	return s.client.Set(ctx, verifiedKey(channel, identifier), "1", ttl).Err()
}

func (s *CodeStore) IsVerified(ctx context.Context, channel domain.Channel, identifier string) (bool, error) {
	n, err := s.client.Exists(ctx, verifiedKey(channel, identifier)).Result()
	if err != nil {
		return false, fmt.Errorf("verified check: %w", err)
	}
	return n > 0, nil
}

func (s *CodeStore) ConsumeVerified(ctx context.Context, channel domain.Channel, identifier string) (bool, error) {
	if err := s.client.GetDel(ctx, verifiedKey(channel, identifier)).Err(); err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("consume verified marker: %w", err)
	}
	return true, nil
}

func codeKey(channel domain.Channel, identifier string) string {
	return fmt.Sprintf("code:%s:%s", channel, identifier)
}

func verifiedKey(channel domain.Channel, identifier string) string {
	return fmt.Sprintf("verified:%s:%s", channel, identifier)
}
