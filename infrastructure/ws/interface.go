package ws

// IHub is the group directory: it tracks which live connections are
// subscribed to each topic and fans events out to them.
type IHub interface {
	Subscribe(topic string, client *UserClient)
	Unsubscribe(topic string, client *UserClient)
	Broadcast(topic string, message []byte)
	EvictAndNotify(topic string, message []byte)
	SubscriberCount(topic string) int
}
