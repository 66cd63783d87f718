package websocket

import "fmt"

// dialogTopic names one directed conversation view. The two directions are
// separate topics: each side has its own hash and its own subscribers.
func dialogTopic(ownerId, partnerId int64) string {
	return fmt.Sprintf("d%d-%d", ownerId, partnerId)
}

// dialogsTopic names one user's conversation-list view.
func dialogsTopic(userId int64) string {
	return fmt.Sprintf("ds%d", userId)
}
