package usecase

import (
	"context"
	"errors"
	"strings"

	"talkwire/internal/entity"
	"talkwire/internal/repository"
)

var (
	ErrEmptyMessage   = errors.New("message text is empty")
	ErrMessageTooLong = errors.New("message text exceeds the maximum length")
)

type MessageUsecase interface {
	// Append validates the text and stores a new message from sender to
	// receiver. No state is mutated on a validation failure.
	Append(ctx context.Context, senderId, receiverId int64, text string) (entity.Message, error)
}

type messageUsecase struct {
	messageRepo repository.MessageRepository
	maxLength   int
}

func NewMessageUsecase(messageRepo repository.MessageRepository, maxLength int) MessageUsecase {
	return &messageUsecase{
		messageRepo: messageRepo,
		maxLength:   maxLength,
	}
}

func (m *messageUsecase) Append(ctx context.Context, senderId, receiverId int64, text string) (entity.Message, error) {
	// Browsers submit textarea content with \r\n line endings; the stored
	// and hashed form uses \n so length checks agree everywhere.
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if text == "" {
		return entity.Message{}, ErrEmptyMessage
	}
	if len([]rune(text)) > m.maxLength {
		return entity.Message{}, ErrMessageTooLong
	}

	return m.messageRepo.Create(ctx, entity.Message{
		SenderId:   senderId,
		ReceiverId: receiverId,
		Text:       text,
	})
}
