package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"talkwire/internal/entity"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageCreated is the event published for every appended message. The
// notification digester consumes it outside this service.
type MessageCreated struct {
	MessageId  string    `json:"messageId"`
	SenderId   int64     `json:"senderId"`
	ReceiverId int64     `json:"receiverId"`
	Time       time.Time `json:"time"`
}

// Producer publishes message-created events. A nil Producer is valid and
// publishes nothing, so wiring stays unconditional in the sessions.
type Producer struct {
	writer *kafkago.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireOne,
		},
	}
}

func (p *Producer) PublishMessageCreated(ctx context.Context, message entity.Message) error {
	if p == nil {
		return nil
	}

	payload, err := json.Marshal(MessageCreated{
		MessageId:  message.Id,
		SenderId:   message.SenderId,
		ReceiverId: message.ReceiverId,
		Time:       message.Time,
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(strconv.FormatInt(message.ReceiverId, 10)),
		Value: payload,
		Time:  message.Time,
	})
}

// UnreadDigest is the periodic per-user unread summary published by the
// notifier so the mailing service can nudge inactive users.
type UnreadDigest struct {
	UserId int64     `json:"userId"`
	Number int64     `json:"number"`
	Time   time.Time `json:"time"`
}

func (p *Producer) PublishUnreadDigest(ctx context.Context, digest entity.UnreadDigest) error {
	if p == nil {
		return nil
	}

	now := time.Now().UTC()
	payload, err := json.Marshal(UnreadDigest{
		UserId: digest.UserId,
		Number: digest.Number,
		Time:   now,
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(strconv.FormatInt(digest.UserId, 10)),
		Value: payload,
		Time:  now,
	})
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
