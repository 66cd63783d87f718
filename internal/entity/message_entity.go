package entity

import "time"

// TimeFormat is the timestamp layout shared with the browser client.
// The integrity protocol depends on both sides formatting times identically.
const TimeFormat = "2006.01.02 15:04:05"

type Message struct {
	Id                  string    `bson:"_id" json:"id"`
	Time                time.Time `bson:"time" json:"time"`
	SenderId            int64     `bson:"senderId" json:"senderId"`
	ReceiverId          int64     `bson:"receiverId" json:"receiverId"`
	Text                string    `bson:"text" json:"text"`
	IsUnread            bool      `bson:"isUnread" json:"isUnread"`
	IsDeletedBySender   bool      `bson:"isDeletedBySender" json:"-"`
	IsDeletedByReceiver bool      `bson:"isDeletedByReceiver" json:"-"`
}

// ClientMessage is the per-message shape pushed to connected clients.
type ClientMessage struct {
	Time            string `json:"time"`
	UserOwnsMessage bool   `json:"user_owns_message"`
	IsUnread        bool   `json:"is_unread"`
	Text            string `json:"text"`
	Hash            int64  `json:"hash"`
}

// LatestMessage is the per-partner aggregation row used to build dialog lists.
type LatestMessage struct {
	Time time.Time
	Text string
}

// UnreadDigest is one row of the users-with-unread-since report consumed by
// the external notification job.
type UnreadDigest struct {
	UserId int64 `bson:"_id" json:"userId"`
	Number int64 `bson:"number" json:"number"`
}
