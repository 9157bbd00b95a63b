package data

import (
	"context"

	"github.com/nfdbot/telegram-relay/internal/biz/repo"
	"github.com/nfdbot/telegram-relay/internal/tg"
)

// telegramGateway adapts the Telegram client to the repo.Gateway
// interface.
type telegramGateway struct {
	client *tg.Client
}

// NewTelegramGateway creates the production gateway.
func NewTelegramGateway(client *tg.Client) repo.Gateway {
	return &telegramGateway{client: client}
}

func (g *telegramGateway) SendMessage(ctx context.Context, req repo.SendRequest) (*repo.SentMessage, error) {
	payload := tg.SendMessageRequest{
		ChatID: req.ChatID,
		Text:   req.Text,
	}
	if req.MarkdownV2 {
		payload.ParseMode = "MarkdownV2"
	}
	if len(req.Buttons) > 0 {
		row := make([]tg.InlineKeyboardButton, len(req.Buttons))
		for i, b := range req.Buttons {
			row[i] = tg.InlineKeyboardButton{Text: b.Text, URL: b.URL}
		}
		payload.ReplyMarkup = &tg.InlineKeyboardMarkup{InlineKeyboard: [][]tg.InlineKeyboardButton{row}}
	}

	msg, err := g.client.SendMessage(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &repo.SentMessage{MessageID: msg.MessageID, ChatID: msg.Chat.ID}, nil
}

func (g *telegramGateway) CopyMessage(ctx context.Context, toChatID, fromChatID, messageID int64) (*repo.SentMessage, error) {
	msg, err := g.client.CopyMessage(ctx, toChatID, fromChatID, messageID)
	if err != nil {
		return nil, err
	}
	return &repo.SentMessage{MessageID: msg.MessageID, ChatID: toChatID}, nil
}

func (g *telegramGateway) ForwardMessage(ctx context.Context, toChatID, fromChatID, messageID int64) (*repo.SentMessage, error) {
	msg, err := g.client.ForwardMessage(ctx, toChatID, fromChatID, messageID)
	if err != nil {
		return nil, err
	}
	return &repo.SentMessage{MessageID: msg.MessageID, ChatID: toChatID}, nil
}

func (g *telegramGateway) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return g.client.DeleteMessage(ctx, chatID, messageID)
}
