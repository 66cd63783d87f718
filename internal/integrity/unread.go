package integrity

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"talkwire/infrastructure/cache"
	"talkwire/internal/repository"
)

// anchorMember keeps an otherwise-empty set representable: redis drops a set
// whose last member is removed, which would be indistinguishable from a cold
// cache. The anchor is never counted and never returned.
const anchorMember = ""

// UnreadDialogs caches the set of partners with unread messages for one
// user. The message store stays authoritative; an expired or lost set is
// recomputed on the next GetNumber.
type UnreadDialogs struct {
	userId   int64
	key      string
	store    cache.Store
	messages repository.MessageRepository
	ttl      time.Duration
}

func NewUnreadDialogs(
	userId int64,
	store cache.Store,
	messages repository.MessageRepository,
	ttl time.Duration,
) *UnreadDialogs {
	return &UnreadDialogs{
		userId:   userId,
		key:      fmt.Sprintf("uds_%d", userId),
		store:    store,
		messages: messages,
		ttl:      ttl,
	}
}

// GetNumber returns the unread-dialog count, reseeding the cache from the
// message store when it is cold.
func (u *UnreadDialogs) GetNumber(ctx context.Context) (int64, error) {
	cardinality, err := u.store.SCard(ctx, u.key)
	if err != nil {
		cardinality = 0
	}

	if cardinality == 0 {
		uds, err := u.messages.UnreadPartners(ctx, u.userId)
		if err != nil {
			return 0, err
		}
		u.seed(ctx, uds)
		return int64(len(uds)), nil
	}

	return cardinality - 1, nil // anchor
}

// Reset replaces the cached set.
func (u *UnreadDialogs) Reset(ctx context.Context, uds map[int64]struct{}) {
	_ = u.store.Del(ctx, u.key)
	u.seed(ctx, uds)
}

func (u *UnreadDialogs) seed(ctx context.Context, uds map[int64]struct{}) {
	members := make([]string, 0, len(uds)+1)
	members = append(members, anchorMember)
	for id := range uds {
		members = append(members, strconv.FormatInt(id, 10))
	}

	_ = u.store.SAdd(ctx, u.key, members...)
	_ = u.store.Expire(ctx, u.key, u.ttl)
}

// AddDialog records one partner as unread. Idempotent.
func (u *UnreadDialogs) AddDialog(ctx context.Context, dialogId int64) error {
	exists, err := u.store.Exists(ctx, u.key)
	if err == nil && !exists {
		_ = u.store.SAdd(ctx, u.key, anchorMember)
	}

	return u.store.SAdd(ctx, u.key, strconv.FormatInt(dialogId, 10))
}

// MarkAsRead removes one partner from the set.
func (u *UnreadDialogs) MarkAsRead(ctx context.Context, dialogId int64) error {
	return u.store.SRem(ctx, u.key, strconv.FormatInt(dialogId, 10))
}
