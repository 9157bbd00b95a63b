package domain

// Chat identifies a Telegram chat.
type Chat struct {
	ID int64 `json:"id"`
}

// Message is one Telegram message, inbound or referenced via a reply.
type Message struct {
	MessageID int64    `json:"message_id"`
	From      *User    `json:"from,omitempty"`
	Chat      Chat     `json:"chat"`
	Text      string   `json:"text,omitempty"`
	ReplyTo   *Message `json:"reply_to_message,omitempty"`
}

// Update is one webhook payload from the Bot API. Update kinds other
// than plain messages are ignored by the relay.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}
