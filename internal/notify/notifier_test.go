package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"talkwire/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubMessageRepo struct {
	mu      sync.Mutex
	digests []entity.UnreadDigest
	sinces  []time.Time
}

func (s *stubMessageRepo) UsersWithUnreadSince(_ context.Context, since time.Time) ([]entity.UnreadDigest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinces = append(s.sinces, since)
	return s.digests, nil
}

func (s *stubMessageRepo) Create(_ context.Context, m entity.Message) (entity.Message, error) {
	return m, nil
}

func (s *stubMessageRepo) UnreadPartners(context.Context, int64) (map[int64]struct{}, error) {
	return nil, nil
}

func (s *stubMessageRepo) DialogMessages(context.Context, int64, int64) ([]entity.Message, error) {
	return nil, nil
}

func (s *stubMessageRepo) LatestPerPartner(context.Context, int64) (map[int64]entity.LatestMessage, error) {
	return nil, nil
}

func (s *stubMessageRepo) MarkRead(context.Context, int64, int64) error { return nil }

func (s *stubMessageRepo) MarkDeleted(context.Context, int64, int64) error { return nil }

func TestNotifier_RunOnce(t *testing.T) {
	repo := &stubMessageRepo{
		digests: []entity.UnreadDigest{
			{UserId: 1, Number: 3},
			{UserId: 2, Number: 1},
		},
	}

	// A nil producer publishes nothing, which is the single-server default.
	n := New(repo, nil, time.Hour, zap.NewNop().Sugar())

	before := time.Now().UTC()
	require.NoError(t, n.RunOnce(context.Background()))

	require.Len(t, repo.sinces, 1)
	since := repo.sinces[0]
	assert.WithinDuration(t, before.Add(-time.Hour), since, time.Second)
}

func TestNotifier_RunStopsOnCancel(t *testing.T) {
	n := New(&stubMessageRepo{}, nil, time.Millisecond, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop on context cancellation")
	}
}
