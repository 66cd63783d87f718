package websocket

import (
	"net/http"
	"strconv"

	"talkwire/infrastructure/events"
	"talkwire/infrastructure/ws"
	"talkwire/internal/entity"
	"talkwire/internal/integrity"
	"talkwire/internal/usecase"
	"talkwire/pkg/pool"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebsocketHandler struct {
	hub       ws.IHub
	authUc    usecase.AuthUsecase
	messageUc usecase.MessageUsecase
	factory   *integrity.Factory
	producer  *events.Producer
	workers   *pool.Pool
	log       *zap.SugaredLogger
}

func NewWebsocketHandler(
	hub ws.IHub,
	authUc usecase.AuthUsecase,
	messageUc usecase.MessageUsecase,
	factory *integrity.Factory,
	producer *events.Producer,
	workers *pool.Pool,
	log *zap.SugaredLogger,
) *WebsocketHandler {
	return &WebsocketHandler{
		hub:       hub,
		authUc:    authUc,
		messageUc: messageUc,
		factory:   factory,
		producer:  producer,
		workers:   workers,
		log:       log,
	}
}

// HandleDialogWS serves /ws/dialogs/u{interlocutorId}: one directed
// conversation view.
func (h *WebsocketHandler) HandleDialogWS(w http.ResponseWriter, r *http.Request) {
	partnerId, err := strconv.ParseInt(chi.URLParam(r, "interlocutorId"), 10, 64)
	if err != nil || partnerId <= 0 {
		http.Error(w, "invalid interlocutor id", http.StatusBadRequest)
		return
	}

	client, claims, ok := h.accept(w, r)
	if !ok {
		return
	}
	if claims.UserId == partnerId {
		// No dialog with yourself.
		client.Send(goHome())
		client.CloseSend()
		return
	}

	session := NewDialogSession(
		claims.UserId, partnerId,
		client, h.hub, h.messageUc, h.factory, h.producer, h.workers, h.log,
	)
	if err := session.Start(r.Context()); err != nil {
		h.log.Errorw("dialog session start failed", "error", err)
		client.CloseSend()
		return
	}
	defer session.Close()

	client.ReadPump(func(data []byte) {
		session.Receive(r.Context(), data)
	})
}

// HandleDialogsWS serves /ws/dialogs/: the caller's conversation-list view.
func (h *WebsocketHandler) HandleDialogsWS(w http.ResponseWriter, r *http.Request) {
	client, claims, ok := h.accept(w, r)
	if !ok {
		return
	}

	session := NewDialogsSession(
		claims.UserId,
		client, h.hub, h.factory, h.workers, h.log,
	)
	if err := session.Start(r.Context()); err != nil {
		h.log.Errorw("dialogs session start failed", "error", err)
		client.CloseSend()
		return
	}
	defer session.Close()

	client.ReadPump(func(data []byte) {
		session.Receive(r.Context(), data)
	})
}

// accept upgrades the connection first and authenticates after, so a
// rejected subscriber still receives go_home over the socket before it is
// closed.
func (h *WebsocketHandler) accept(w http.ResponseWriter, r *http.Request) (*ws.UserClient, *entity.TokenClaims, bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("upgrade failed", "error", err)
		return nil, nil, false
	}

	claims, err := h.authUc.ValidateAccessToken(r.URL.Query().Get("token"))
	if err != nil {
		h.log.Warnw("unauthenticated subscriber", "error", err)
		client := ws.NewClient(0, conn)
		go client.WritePump()
		client.Send(goHome())
		client.CloseSend()
		return nil, nil, false
	}

	client := ws.NewClient(claims.UserId, conn)
	go client.WritePump()
	return client, claims, true
}
