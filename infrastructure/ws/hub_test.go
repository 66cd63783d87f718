package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub() IHub {
	return NewGroupHub(zap.NewNop().Sugar())
}

// received drains one queued frame without blocking the test on an empty
// channel.
func received(c *UserClient) (string, bool) {
	select {
	case data, ok := <-c.send:
		if !ok {
			return "", false
		}
		return string(data), true
	default:
		return "", false
	}
}

func TestGroupHub_SubscribeAndBroadcast(t *testing.T) {
	hub := newTestHub()

	first := NewClient(1, nil)
	second := NewClient(2, nil)
	hub.Subscribe("d1-2", first)
	hub.Subscribe("d1-2", second)
	require.Equal(t, 2, hub.SubscriberCount("d1-2"))

	hub.Broadcast("d1-2", []byte("hello"))

	for _, client := range []*UserClient{first, second} {
		data, ok := received(client)
		require.True(t, ok)
		assert.Equal(t, "hello", data)
	}

	t.Run("broadcast to an unknown topic is a no-op", func(t *testing.T) {
		hub.Broadcast("d9-9", []byte("nobody"))
		assert.Equal(t, 0, hub.SubscriberCount("d9-9"))
	})
}

func TestGroupHub_Unsubscribe(t *testing.T) {
	hub := newTestHub()
	client := NewClient(1, nil)

	hub.Subscribe("ds1", client)
	hub.Unsubscribe("ds1", client)
	assert.Equal(t, 0, hub.SubscriberCount("ds1"))

	// The send channel is closed so the write pump can finish.
	_, ok := <-client.send
	assert.False(t, ok)

	t.Run("unsubscribing twice is safe", func(t *testing.T) {
		hub.Unsubscribe("ds1", client)
	})
}

func TestGroupHub_EvictAndNotify(t *testing.T) {
	hub := newTestHub()

	old := NewClient(1, nil)
	hub.Subscribe("d1-2", old)

	hub.EvictAndNotify("d1-2", []byte(`{"command":"go_home"}`))

	data, ok := received(old)
	require.True(t, ok)
	assert.Equal(t, `{"command":"go_home"}`, data)

	// The final frame is followed by channel close.
	_, ok = <-old.send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.SubscriberCount("d1-2"))

	t.Run("the replacement subscriber is unaffected", func(t *testing.T) {
		fresh := NewClient(1, nil)
		hub.Subscribe("d1-2", fresh)

		hub.Broadcast("d1-2", []byte("after"))
		data, ok := received(fresh)
		require.True(t, ok)
		assert.Equal(t, "after", data)
	})

	t.Run("evicting an empty topic is a no-op", func(t *testing.T) {
		hub.EvictAndNotify("d7-8", []byte("x"))
	})
}

func TestGroupHub_SendAfterEviction(t *testing.T) {
	hub := newTestHub()

	client := NewClient(1, nil)
	hub.Subscribe("d1-2", client)
	hub.EvictAndNotify("d1-2", []byte(`{"command":"go_home"}`))

	// The evicted session's read goroutine may still reply on its own
	// connection; that must degrade to a dropped frame, not a panic.
	assert.False(t, client.Send([]byte("late reply")))

	t.Run("close and send race cleanly", func(t *testing.T) {
		racer := NewClient(2, nil)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 1000; i++ {
				racer.Send([]byte("frame"))
			}
		}()

		racer.CloseSend()
		<-done
	})
}

func TestGroupHub_DropsSlowSubscriber(t *testing.T) {
	hub := newTestHub()

	slow := NewClient(1, nil)
	hub.Subscribe("ds1", slow)

	// Fill the client's buffer so the next broadcast cannot be queued.
	for slow.Send([]byte("fill")) {
	}

	hub.Broadcast("ds1", []byte("overflow"))
	assert.Equal(t, 0, hub.SubscriberCount("ds1"))
}
