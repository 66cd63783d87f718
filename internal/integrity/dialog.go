package integrity

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"talkwire/infrastructure/cache"
	"talkwire/internal/entity"
	"talkwire/internal/repository"
)

// DialogIntegrity caches the full-timeline hash of one directed conversation
// view: the sum of DigestTime over every message visible to the owner. The
// two directions of a conversation have independent caches because each
// side's deletions diverge.
//
// Cache failures are never fatal here: a lost write just means the next read
// recomputes from the message store, and a stale value only makes the client
// refetch once more than necessary.
type DialogIntegrity struct {
	ownerId   int64
	partnerId int64
	key       string
	store     cache.Store
	messages  repository.MessageRepository
	ttl       time.Duration
}

func NewDialogIntegrity(
	ownerId, partnerId int64,
	store cache.Store,
	messages repository.MessageRepository,
	ttl time.Duration,
) *DialogIntegrity {
	return &DialogIntegrity{
		ownerId:   ownerId,
		partnerId: partnerId,
		key:       fmt.Sprintf("di_%d-%d", ownerId, partnerId),
		store:     store,
		messages:  messages,
		ttl:       ttl,
	}
}

// GetHash returns the cached hash, recomputing from the message store on a
// miss.
func (d *DialogIntegrity) GetHash(ctx context.Context) (int64, error) {
	value, ok, err := d.store.Get(ctx, d.key)
	if err == nil && ok {
		if hash, parseErr := strconv.ParseInt(value, 10, 64); parseErr == nil {
			return hash, nil
		}
	}

	_, hash, err := d.GetMessages(ctx)
	return hash, err
}

// GetMessages loads the owner's view of the conversation, recomputes the
// hash from it and writes the hash back with a fresh TTL.
func (d *DialogIntegrity) GetMessages(ctx context.Context) ([]entity.Message, int64, error) {
	messages, err := d.messages.DialogMessages(ctx, d.ownerId, d.partnerId)
	if err != nil {
		return nil, 0, err
	}

	var hash int64
	for _, message := range messages {
		hash += DigestTime(message.Time)
	}

	_ = d.store.SetEx(ctx, d.key, strconv.FormatInt(hash, 10), d.ttl)

	return messages, hash, nil
}

// AddDelta folds one new message into the cached hash without a recompute.
func (d *DialogIntegrity) AddDelta(ctx context.Context, t time.Time) error {
	return d.store.IncrBy(ctx, d.key, DigestTime(t))
}

// Invalidate pins the cached hash to zero. Used when the owner deletes the
// conversation: the rows stay in the store but are filtered out on read, so
// the owner's timeline sum is known to be zero without recomputing.
func (d *DialogIntegrity) Invalidate(ctx context.Context) error {
	return d.store.SetEx(ctx, d.key, "0", d.ttl)
}
