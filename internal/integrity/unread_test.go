package integrity

import (
	"context"
	"testing"
	"time"

	"talkwire/infrastructure/cache"
	"talkwire/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadDialogs_GetNumber(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemStore(0)
	defer store.Close()

	repo := &fakeMessageRepo{}
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	repo.add(entity.Message{Time: at, SenderId: 2, ReceiverId: 1, Text: "a", IsUnread: true})
	repo.add(entity.Message{Time: at, SenderId: 3, ReceiverId: 1, Text: "b", IsUnread: true})

	manager := NewUnreadDialogs(1, store, repo, time.Minute)

	t.Run("cold cache recomputes from the message store", func(t *testing.T) {
		n, err := manager.GetNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("warm cache does not count the sentinel", func(t *testing.T) {
		n, err := manager.GetNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("mark as read removes one partner", func(t *testing.T) {
		require.NoError(t, manager.MarkAsRead(ctx, 2))

		n, err := manager.GetNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("a cached empty set is not mistaken for a cold cache", func(t *testing.T) {
		require.NoError(t, manager.MarkAsRead(ctx, 3))

		// The message store still reports unread partners; the sentinel
		// keeps the cached zero authoritative until the entry expires.
		n, err := manager.GetNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

func TestUnreadDialogs_AddDialog(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemStore(0)
	defer store.Close()

	manager := NewUnreadDialogs(1, store, &fakeMessageRepo{}, time.Minute)

	t.Run("first add seeds the sentinel alongside", func(t *testing.T) {
		require.NoError(t, manager.AddDialog(ctx, 5))

		n, err := manager.GetNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("adding the same partner twice counts once", func(t *testing.T) {
		require.NoError(t, manager.AddDialog(ctx, 5))

		n, err := manager.GetNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestUnreadDialogs_Reset(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemStore(0)
	defer store.Close()

	manager := NewUnreadDialogs(1, store, &fakeMessageRepo{}, time.Minute)
	require.NoError(t, manager.AddDialog(ctx, 5))
	require.NoError(t, manager.AddDialog(ctx, 6))

	manager.Reset(ctx, map[int64]struct{}{9: {}})

	n, err := manager.GetNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
