package websocket

import (
	"encoding/json"

	"talkwire/internal/entity"
	"talkwire/internal/integrity"
)

// Outbound command names.
const (
	cmdCheckIntegrity = "check_integrity"
	cmdGoHome         = "go_home"
	cmdGetMessages    = "get_messages"
	cmdGetDialogs     = "get_dialogs"
	cmdFailedCommand  = "failed_command"
)

type checkIntegrityEvent struct {
	Command       string `json:"command"`
	IntegrityHash int64  `json:"integrity_hash"`
}

type goHomeEvent struct {
	Command string `json:"command"`
}

type newMessageEvent struct {
	Command       string                `json:"command"`
	Message       *entity.ClientMessage `json:"message,omitempty"`
	Dialog        *entity.Dialog        `json:"dialog,omitempty"`
	IntegrityHash int64                 `json:"integrity_hash"`
}

type messagesEvent struct {
	Command  string                 `json:"command"`
	Messages []entity.ClientMessage `json:"messages"`
}

type markReadEvent struct {
	Command       string `json:"command"`
	DialogId      int64  `json:"dialog_id"`
	IntegrityHash int64  `json:"integrity_hash"`
}

type dialogsEvent struct {
	Command string          `json:"command"`
	Dialogs []entity.Dialog `json:"dialogs"`
}

type deleteDialogEvent struct {
	Command       string `json:"command"`
	DialogId      int64  `json:"dialog_id"`
	IntegrityHash int64  `json:"integrity_hash"`
}

type failedCommandEvent struct {
	Command    string `json:"command"`
	FailedWith string `json:"failed_with"`
	Error      string `json:"error"`
}

// encode marshals an outbound event. The event structs contain nothing
// json.Marshal can reject.
func encode(event any) []byte {
	data, _ := json.Marshal(event)
	return data
}

func goHome() []byte {
	return encode(goHomeEvent{Command: cmdGoHome})
}

// clientView renders a message for one side of the conversation. Senders
// always see their own messages as read.
func clientView(m entity.Message, currentUserId int64) entity.ClientMessage {
	owns := m.SenderId == currentUserId
	isUnread := m.IsUnread
	if owns {
		isUnread = false
	}
	return entity.ClientMessage{
		Time:            m.Time.Format(entity.TimeFormat),
		UserOwnsMessage: owns,
		IsUnread:        isUnread,
		Text:            m.Text,
		Hash:            integrity.DigestTime(m.Time),
	}
}
