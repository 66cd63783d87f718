package websocket

// Inbound command names.
const (
	cmdGetNewMessage    = "get_new_message"
	cmdMarkDialogAsRead = "mark_dialog_as_read"
	cmdGiveMessages     = "give_messages"
	cmdDeleteDialog     = "delete_dialog"
	cmdGiveDialogs      = "give_dialogs"
)

type commandEnvelope struct {
	Command string `json:"command"`
}

type newMessageRequest struct {
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

type deleteDialogRequest struct {
	DialogId int64 `json:"dialog_id"`
}
