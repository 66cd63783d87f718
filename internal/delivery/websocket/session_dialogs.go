package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"talkwire/infrastructure/ws"
	"talkwire/internal/entity"
	"talkwire/internal/integrity"
	"talkwire/pkg/pool"

	"go.uber.org/zap"
)

// DialogsSession serves one connection subscribed to a user's
// conversation-list topic.
type DialogsSession struct {
	userId int64
	state  sessionState

	client *ws.UserClient
	hub    ws.IHub
	topic  string

	factory    *integrity.Factory
	dsiManager *integrity.DialogsIntegrity
	udsManager *integrity.UnreadDialogs

	workers *pool.Pool
	log     *zap.SugaredLogger
}

func NewDialogsSession(
	userId int64,
	client *ws.UserClient,
	hub ws.IHub,
	factory *integrity.Factory,
	workers *pool.Pool,
	log *zap.SugaredLogger,
) *DialogsSession {
	return &DialogsSession{
		userId:     userId,
		state:      stateConnecting,
		client:     client,
		hub:        hub,
		topic:      dialogsTopic(userId),
		factory:    factory,
		dsiManager: factory.Dialogs(userId),
		udsManager: factory.Unread(userId),
		workers:    workers,
		log:        log.With("type", "dialogs", "name", fmt.Sprintf("%d", userId)),
	}
}

func (s *DialogsSession) Start(ctx context.Context) error {
	s.hub.EvictAndNotify(s.topic, goHome())

	hash, err := pooledHash(ctx, s.workers, s.dsiManager)
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

func (s *DialogsSession) Close() {
	s.hub.Unsubscribe(s.topic, s.client)
	s.state = stateClosed
	s.log.Infow("disconnect", "state", s.state.String())
}

func (s *DialogsSession) Receive(ctx context.Context, data []byte) {
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
	case cmdDeleteDialog:
		err = s.handleDeleteDialog(ctx, data)
	case cmdGiveDialogs:
		err = s.handleGiveDialogs(ctx)
	default:
		s.log.Warnw("invalid command", "command", envelope.Command)
		return
	}

	if err != nil {
		s.log.Errorw("command failed", "command", envelope.Command, "error", err)
	}
}

func (s *DialogsSession) handleDeleteDialog(ctx context.Context, data []byte) error {
	var req deleteDialogRequest
	if err := json.Unmarshal(data, &req); err != nil || req.DialogId == 0 {
		s.log.Warn("malformed delete_dialog payload")
		return nil
	}

	err := s.workers.Do(ctx, func(ctx context.Context) error {
		return s.dsiManager.MarkAsDeleted(ctx, req.DialogId)
	})
	if err != nil {
		return err
	}

	if err := s.udsManager.MarkAsRead(ctx, req.DialogId); err != nil {
		s.log.Warnw("unread-set update failed", "error", err)
	}

	// The deleted side's timeline is now empty on read, so its hash is
	// known without recomputing. The partner's caches are untouched.
	diManager := s.factory.Dialog(s.userId, req.DialogId)
	if err := diManager.Invalidate(ctx); err != nil {
		s.log.Warnw("dialog hash invalidate failed", "error", err)
	}

	listHash, err := pooledHash(ctx, s.workers, s.dsiManager)
	if err != nil {
		return err
	}
	s.hub.Broadcast(s.topic, encode(deleteDialogEvent{
		Command:       cmdDeleteDialog,
		DialogId:      req.DialogId,
		IntegrityHash: listHash,
	}))
	return nil
}

func (s *DialogsSession) handleGiveDialogs(ctx context.Context) error {
	var dialogs []entity.Dialog
	err := s.workers.Do(ctx, func(ctx context.Context) error {
		var (
			uds map[int64]struct{}
			err error
		)
		dialogs, _, uds, err = s.dsiManager.GetDialogs(ctx)
		if err != nil {
			return err
		}

		s.udsManager.Reset(ctx, uds)
		return nil
	})
	if err != nil {
		return err
	}

	s.client.Send(encode(dialogsEvent{
		Command: cmdGetDialogs,
		Dialogs: dialogs,
	}))
	return nil
}
