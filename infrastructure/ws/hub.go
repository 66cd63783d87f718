package ws

import (
	"sync"

	"go.uber.org/zap"
)

// GroupHub is the in-process IHub: topic name to subscriber set. Delivery is
// best-effort per subscriber; a client whose buffer is full is dropped from
// the topic rather than allowed to stall the others.
type GroupHub struct {
	mu     sync.RWMutex
	groups map[string]map[*UserClient]struct{}
	log    *zap.SugaredLogger
}

func NewGroupHub(log *zap.SugaredLogger) IHub {
	return &GroupHub{
		groups: make(map[string]map[*UserClient]struct{}),
		log:    log,
	}
}

func (h *GroupHub) Subscribe(topic string, client *UserClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.groups[topic]; !ok {
		h.groups[topic] = make(map[*UserClient]struct{})
	}
	h.groups[topic][client] = struct{}{}
	h.log.Debugf("user %d subscribed to %s", client.UserId, topic)
}

func (h *GroupHub) Unsubscribe(topic string, client *UserClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if group, ok := h.groups[topic]; ok {
		if _, member := group[client]; member {
			delete(group, client)
			client.CloseSend()
			h.log.Debugf("user %d unsubscribed from %s", client.UserId, topic)
		}
		if len(group) == 0 {
			delete(h.groups, topic)
		}
	}
}

func (h *GroupHub) Broadcast(topic string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.groups[topic] {
		if !client.Send(message) {
			h.log.Warnf("dropping slow subscriber %d on %s", client.UserId, topic)
			delete(h.groups[topic], client)
			client.CloseSend()
		}
	}
	if len(h.groups[topic]) == 0 {
		delete(h.groups, topic)
	}
}

// EvictAndNotify pushes a final message to every current subscriber of the
// topic and removes them all. Called before a new subscriber is admitted:
// only the newest connection per topic stays live.
func (h *GroupHub) EvictAndNotify(topic string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[topic]
	if !ok {
		return
	}
	for client := range group {
		client.Send(message)
		client.CloseSend()
		h.log.Infof("evicted user %d from %s", client.UserId, topic)
	}
	delete(h.groups, topic)
}

func (h *GroupHub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[topic])
}
