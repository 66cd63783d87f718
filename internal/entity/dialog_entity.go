package entity

// Dialog is one conversation summary in a user's dialog list. Hash is the
// list-level digest derived from the latest message only (partner id plus the
// time digest), not the full-timeline hash of the conversation itself.
type Dialog struct {
	Id       int64  `json:"id"`
	Text     string `json:"text"`
	IsUnread bool   `json:"is_unread"`
	Hash     int64  `json:"hash"`
}
