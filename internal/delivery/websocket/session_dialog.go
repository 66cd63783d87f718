package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"talkwire/infrastructure/events"
	"talkwire/infrastructure/ws"
	"talkwire/internal/entity"
	"talkwire/internal/integrity"
	"talkwire/internal/usecase"
	"talkwire/pkg/pool"

	"go.uber.org/zap"
)

// DialogSession serves one connection subscribed to a directed conversation
// topic. It owns both directions' dialog hashes and both users' list caches
// because a new message touches all four.
type DialogSession struct {
	userId    int64
	partnerId int64
	state     sessionState

	client *ws.UserClient
	hub    ws.IHub

	topic      string // own conversation view
	topic2     string // partner's conversation view
	listTopic  string
	listTopic2 string

	messageUc usecase.MessageUsecase

	iManager    *integrity.DialogIntegrity
	iManager2   *integrity.DialogIntegrity
	dsiManager  *integrity.DialogsIntegrity
	dsiManager2 *integrity.DialogsIntegrity
	udsManager  *integrity.UnreadDialogs
	udsManager2 *integrity.UnreadDialogs

	producer *events.Producer
	workers  *pool.Pool
	log      *zap.SugaredLogger
}

func NewDialogSession(
	userId, partnerId int64,
	client *ws.UserClient,
	hub ws.IHub,
	messageUc usecase.MessageUsecase,
	factory *integrity.Factory,
	producer *events.Producer,
	workers *pool.Pool,
	log *zap.SugaredLogger,
) *DialogSession {
	return &DialogSession{
		userId:      userId,
		partnerId:   partnerId,
		state:       stateConnecting,
		client:      client,
		hub:         hub,
		topic:       dialogTopic(userId, partnerId),
		topic2:      dialogTopic(partnerId, userId),
		listTopic:   dialogsTopic(userId),
		listTopic2:  dialogsTopic(partnerId),
		messageUc:   messageUc,
		iManager:    factory.Dialog(userId, partnerId),
		iManager2:   factory.Dialog(partnerId, userId),
		dsiManager:  factory.Dialogs(userId),
		dsiManager2: factory.Dialogs(partnerId),
		udsManager:  factory.Unread(userId),
		udsManager2: factory.Unread(partnerId),
		producer:    producer,
		workers:     workers,
		log:         log.With("type", "dialog", "name", fmt.Sprintf("%d-%d", userId, partnerId)),
	}
}

// Start evicts any stale subscriber of this session's topic, admits the
// session and pushes the integrity handshake.
func (s *DialogSession) Start(ctx context.Context) error {
	s.hub.EvictAndNotify(s.topic, goHome())

	hash, err := pooledHash(ctx, s.workers, s.iManager)
	if err != nil {
		return err
	}

	s.hub.Subscribe(s.topic, s.client)
	s.state = stateActive
	s.log.Infow("connect", "state", s.state.String())

	s.client.Send(encode(checkIntegrityEvent{
		Command:       cmdCheckIntegrity,
		IntegrityHash: hash,
	}))
	return nil
}

// Close transitions the session to its terminal state on transport
// disconnect and releases the topic subscription.
func (s *DialogSession) Close() {
	s.hub.Unsubscribe(s.topic, s.client)
	s.state = stateClosed
	s.log.Infow("disconnect", "state", s.state.String())
}

// Receive handles one inbound frame. Unknown or malformed commands are
// logged and dropped; the connection stays open.
func (s *DialogSession) Receive(ctx context.Context, data []byte) {
	if s.state != stateActive {
		return
	}
	s.log.Debugw("receive", "data", string(data))

	var envelope commandEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Command == "" {
		s.log.Warn("command is needed")
		return
	}

	var err error
	switch envelope.Command {
	case cmdGetNewMessage:
		err = s.handleNewMessage(ctx, data)
	case cmdMarkDialogAsRead:
		err = s.handleMarkAsRead(ctx)
	case cmdGiveMessages:
		err = s.handleGiveMessages(ctx)
	default:
		s.log.Warnw("invalid command", "command", envelope.Command)
		return
	}

	if err != nil {
		s.log.Errorw("command failed", "command", envelope.Command, "error", err)
	}
}

func (s *DialogSession) handleNewMessage(ctx context.Context, data []byte) error {
	var req newMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.log.Warn("malformed get_new_message payload")
		return nil
	}

	var message entity.Message
	err := s.workers.Do(ctx, func(ctx context.Context) error {
		var err error
		message, err = s.messageUc.Append(ctx, s.userId, s.partnerId, req.Message.Text)
		return err
	})
	if err != nil {
		if errors.Is(err, usecase.ErrMessageTooLong) || errors.Is(err, usecase.ErrEmptyMessage) {
			s.client.Send(encode(failedCommandEvent{
				Command:    cmdFailedCommand,
				FailedWith: cmdGetNewMessage,
				Error:      err.Error(),
			}))
			return nil
		}
		return err
	}

	// The store write and the cache updates below are not one transaction.
	// A partial failure leaves a stale hash at worst, and a stale hash only
	// makes the client refetch.
	if err := s.udsManager2.AddDialog(ctx, s.userId); err != nil {
		s.log.Warnw("unread-set update failed", "error", err)
	}
	if err := s.iManager.AddDelta(ctx, message.Time); err != nil {
		s.log.Warnw("dialog hash update failed", "error", err)
	}
	if err := s.iManager2.AddDelta(ctx, message.Time); err != nil {
		s.log.Warnw("dialog hash update failed", "error", err)
	}

	hash, err := pooledHash(ctx, s.workers, s.iManager)
	if err != nil {
		return err
	}
	view := clientView(message, s.userId)
	s.hub.Broadcast(s.topic, encode(newMessageEvent{
		Command:       cmdGetNewMessage,
		Message:       &view,
		IntegrityHash: hash,
	}))

	hash2, err := pooledHash(ctx, s.workers, s.iManager2)
	if err != nil {
		return err
	}
	view2 := clientView(message, s.partnerId)
	s.hub.Broadcast(s.topic2, encode(newMessageEvent{
		Command:       cmdGetNewMessage,
		Message:       &view2,
		IntegrityHash: hash2,
	}))

	// Sender's list: the partner's dialog moved, still read from this side.
	dialogHash := integrity.DigestDialog(s.partnerId, message.Time)
	if err := s.dsiManager.ConsiderNew(ctx, s.partnerId, dialogHash); err != nil {
		s.log.Warnw("list cache update failed", "error", err)
	}
	listHash, err := pooledHash(ctx, s.workers, s.dsiManager)
	if err != nil {
		return err
	}
	s.hub.Broadcast(s.listTopic, encode(newMessageEvent{
		Command: cmdGetNewMessage,
		Dialog: &entity.Dialog{
			Id:       s.partnerId,
			Text:     message.Text,
			IsUnread: false,
			Hash:     dialogHash,
		},
		IntegrityHash: listHash,
	}))

	// Receiver's list: the sender's dialog moved and is now unread.
	dialogHash2 := integrity.DigestDialog(s.userId, message.Time)
	if err := s.dsiManager2.ConsiderNew(ctx, s.userId, dialogHash2); err != nil {
		s.log.Warnw("list cache update failed", "error", err)
	}
	listHash2, err := pooledHash(ctx, s.workers, s.dsiManager2)
	if err != nil {
		return err
	}
	s.hub.Broadcast(s.listTopic2, encode(newMessageEvent{
		Command: cmdGetNewMessage,
		Dialog: &entity.Dialog{
			Id:       s.userId,
			Text:     message.Text,
			IsUnread: true,
			Hash:     dialogHash2,
		},
		IntegrityHash: listHash2,
	}))

	go func() {
		if err := s.producer.PublishMessageCreated(context.Background(), message); err != nil {
			s.log.Warnw("event publish failed", "error", err)
		}
	}()

	return nil
}

func (s *DialogSession) handleMarkAsRead(ctx context.Context) error {
	err := s.workers.Do(ctx, func(ctx context.Context) error {
		return s.dsiManager.MarkAsRead(ctx, s.partnerId)
	})
	if err != nil {
		return err
	}
	if err := s.udsManager.MarkAsRead(ctx, s.partnerId); err != nil {
		s.log.Warnw("unread-set update failed", "error", err)
	}

	listHash, err := pooledHash(ctx, s.workers, s.dsiManager)
	if err != nil {
		return err
	}
	s.hub.Broadcast(s.listTopic, encode(markReadEvent{
		Command:       cmdMarkDialogAsRead,
		DialogId:      s.partnerId,
		IntegrityHash: listHash,
	}))
	return nil
}

func (s *DialogSession) handleGiveMessages(ctx context.Context) error {
	var views []entity.ClientMessage
	err := s.workers.Do(ctx, func(ctx context.Context) error {
		messages, _, err := s.iManager.GetMessages(ctx)
		if err != nil {
			return err
		}
		views = make([]entity.ClientMessage, 0, len(messages))
		for _, message := range messages {
			views = append(views, clientView(message, s.userId))
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.client.Send(encode(messagesEvent{
		Command:  cmdGetMessages,
		Messages: views,
	}))
	return nil
}
