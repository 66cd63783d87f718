package notify

import (
	"context"
	"time"

	"talkwire/infrastructure/events"
	"talkwire/internal/repository"

	"go.uber.org/zap"
)

// Notifier periodically reports users who received unread messages within
// the last period. Each row is published as an unread-digest event; the
// mailing service downstream turns those into notification emails.
type Notifier struct {
	messages repository.MessageRepository
	producer *events.Producer
	period   time.Duration
	log      *zap.SugaredLogger
}

func New(messages repository.MessageRepository, producer *events.Producer, period time.Duration, log *zap.SugaredLogger) *Notifier {
	return &Notifier{
		messages: messages,
		producer: producer,
		period:   period,
		log:      log,
	}
}

// Run blocks until ctx is cancelled, running one digest pass per period.
func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := n.RunOnce(ctx); err != nil {
				n.log.Warnw("unread digest pass failed", "error", err)
			}
		}
	}
}

// RunOnce publishes a digest event for every user with unread messages
// newer than one period ago.
func (n *Notifier) RunOnce(ctx context.Context) error {
	since := time.Now().UTC().Add(-n.period)

	digests, err := n.messages.UsersWithUnreadSince(ctx, since)
	if err != nil {
		return err
	}

	for _, digest := range digests {
		if err := n.producer.PublishUnreadDigest(ctx, digest); err != nil {
			n.log.Warnw("publish unread digest failed", "userId", digest.UserId, "error", err)
			continue
		}
		n.log.Infow("unread digest", "userId", digest.UserId, "number", digest.Number)
	}
	return nil
}
