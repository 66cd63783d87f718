package cache

import (
	"context"
	"time"
)

// Store is the narrow cache surface the integrity managers run on: plain
// counters, one hash per dialog list, one set per unread-dialogs entry.
// Verbs map one-to-one onto the redis commands the production backend uses,
// and the in-memory backend keeps the same semantics (keys created through
// IncrBy/HSet/SAdd have no expiration until Expire or SetEx attaches one).
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, delta int64) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	HDel(ctx context.Context, key, field string) error

	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key, member string) error
	SCard(ctx context.Context, key string) (int64, error)
}
