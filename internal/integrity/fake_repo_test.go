package integrity

import (
	"context"
	"sort"
	"sync"
	"time"

	"talkwire/internal/entity"

	"github.com/google/uuid"
)

// fakeMessageRepo is an in-memory MessageRepository with the same visibility
// rules as the mongo implementation.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []entity.Message
}

// add seeds a stored message directly, bypassing validation.
func (f *fakeMessageRepo) add(m entity.Message) entity.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	if m.Id == "" {
		m.Id = uuid.New().String()
	}
	f.messages = append(f.messages, m)
	return m
}

func (f *fakeMessageRepo) Create(_ context.Context, m entity.Message) (entity.Message, error) {
	m.Id = uuid.New().String()
	m.Time = time.Now().UTC().Truncate(time.Second)
	m.IsUnread = true
	m.IsDeletedBySender = false
	m.IsDeletedByReceiver = false
	return f.add(m), nil
}

func (f *fakeMessageRepo) UnreadPartners(_ context.Context, userId int64) (map[int64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	partners := make(map[int64]struct{})
	for _, m := range f.messages {
		if m.ReceiverId == userId && m.IsUnread && !m.IsDeletedByReceiver {
			partners[m.SenderId] = struct{}{}
		}
	}
	return partners, nil
}

func (f *fakeMessageRepo) DialogMessages(_ context.Context, ownerId, partnerId int64) ([]entity.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var visible []entity.Message
	for _, m := range f.messages {
		sent := m.SenderId == ownerId && m.ReceiverId == partnerId && !m.IsDeletedBySender
		got := m.SenderId == partnerId && m.ReceiverId == ownerId && !m.IsDeletedByReceiver
		if sent || got {
			visible = append(visible, m)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Time.Before(visible[j].Time)
	})
	return visible, nil
}

func (f *fakeMessageRepo) LatestPerPartner(_ context.Context, userId int64) (map[int64]entity.LatestMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	latest := make(map[int64]entity.LatestMessage)
	consider := func(partnerId int64, m entity.Message) {
		if current, ok := latest[partnerId]; !ok || m.Time.After(current.Time) {
			latest[partnerId] = entity.LatestMessage{Time: m.Time, Text: m.Text}
		}
	}
	for _, m := range f.messages {
		if m.SenderId == userId && !m.IsDeletedBySender {
			consider(m.ReceiverId, m)
		}
		if m.ReceiverId == userId && !m.IsDeletedByReceiver {
			consider(m.SenderId, m)
		}
	}
	return latest, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, ownerId, partnerId int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, m := range f.messages {
		if m.SenderId == partnerId && m.ReceiverId == ownerId && m.IsUnread && !m.IsDeletedByReceiver {
			f.messages[i].IsUnread = false
		}
	}
	return nil
}

func (f *fakeMessageRepo) MarkDeleted(_ context.Context, ownerId, partnerId int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, m := range f.messages {
		if m.SenderId == ownerId && m.ReceiverId == partnerId {
			f.messages[i].IsDeletedBySender = true
		}
		if m.SenderId == partnerId && m.ReceiverId == ownerId {
			f.messages[i].IsDeletedByReceiver = true
		}
	}
	return nil
}

func (f *fakeMessageRepo) UsersWithUnreadSince(_ context.Context, since time.Time) ([]entity.UnreadDigest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[int64]int64)
	for _, m := range f.messages {
		if m.IsUnread && !m.IsDeletedByReceiver && !m.Time.Before(since) {
			counts[m.ReceiverId]++
		}
	}

	digests := make([]entity.UnreadDigest, 0, len(counts))
	for userId, number := range counts {
		digests = append(digests, entity.UnreadDigest{UserId: userId, Number: number})
	}
	sort.Slice(digests, func(i, j int) bool {
		return digests[i].UserId < digests[j].UserId
	})
	return digests, nil
}
