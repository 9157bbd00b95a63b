package repo

import "context"

// InlineButton is a single URL button attached below a message.
type InlineButton struct {
	Text string
	URL  string
}

// SendRequest describes one outbound text message.
type SendRequest struct {
	ChatID     int64
	Text       string
	MarkdownV2 bool
	Buttons    []InlineButton
}

// SentMessage is the gateway's handle for a delivered message.
type SentMessage struct {
	MessageID int64
	ChatID    int64
}

// Gateway sends, copies, forwards and deletes messages on the
// messaging platform.
type Gateway interface {
	// SendMessage sends a text message and returns its id.
	SendMessage(ctx context.Context, req SendRequest) (*SentMessage, error)

	// CopyMessage re-sends an existing message into another chat
	// without attribution, preserving formatting and attachments.
	CopyMessage(ctx context.Context, toChatID, fromChatID, messageID int64) (*SentMessage, error)

	// ForwardMessage relays a message preserving attribution and
	// returns the id of the copy created in the destination chat.
	ForwardMessage(ctx context.Context, toChatID, fromChatID, messageID int64) (*SentMessage, error)

	// DeleteMessage removes a previously sent message.
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
}
