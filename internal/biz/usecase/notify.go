package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nfdbot/telegram-relay/internal/biz/domain"
	"github.com/nfdbot/telegram-relay/internal/biz/repo"
)

// NotifyConfig carries the static notification policy.
type NotifyConfig struct {
	Enabled     bool
	Interval    time.Duration
	AdminChatID int64
	TemplateURL string
}

// NotifyUsecase sends the admin either a fraud alert or a rate-gated
// profile notification after each processed guest message.
type NotifyUsecase struct {
	cfg     NotifyConfig
	gateway repo.Gateway
	source  repo.DocumentSource
	fraud   *FraudUsecase
	gate    *RateGateUsecase
	profile *ProfileUsecase
}

// NewNotifyUsecase creates the notification flow.
func NewNotifyUsecase(cfg NotifyConfig, gateway repo.Gateway, source repo.DocumentSource, fraud *FraudUsecase, gate *RateGateUsecase, profile *ProfileUsecase) *NotifyUsecase {
	return &NotifyUsecase{
		cfg:     cfg,
		gateway: gateway,
		source:  source,
		fraud:   fraud,
		gate:    gate,
		profile: profile,
	}
}

// Notify runs after every processed guest message. A flagged sender
// produces a fraud alert and nothing else; otherwise a profile
// notification goes out at most once per interval per chat.
func (uc *NotifyUsecase) Notify(ctx context.Context, msg *domain.Message) error {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	flagged, err := uc.fraud.IsFraud(ctx, chatID)
	if err != nil {
		// Fail open: an unreachable fraud list must not abort the update.
		fmt.Printf("[Notify] fraud check for %s failed: %v\n", chatID, err)
		flagged = false
	}
	if flagged {
		_, err := uc.gateway.SendMessage(ctx, repo.SendRequest{
			ChatID:     uc.cfg.AdminChatID,
			Text:       "Fraud detected, UID:`" + domain.EscapeMarkdownV2(chatID) + "`",
			MarkdownV2: true,
		})
		return err
	}

	if !uc.cfg.Enabled || msg.From == nil {
		return nil
	}

	open, err := uc.gate.TryAcquire(ctx, NotifyGatePrefix, chatID, uc.cfg.Interval)
	if err != nil {
		return err
	}
	if !open {
		return nil
	}

	profile, err := uc.profile.Collect(ctx, msg)
	if err != nil {
		return err
	}

	tmpl, err := uc.source.Fetch(ctx, uc.cfg.TemplateURL)
	if err != nil {
		fmt.Printf("[Notify] notification template fetch failed: %v\n", err)
		return nil
	}

	_, err = uc.gateway.SendMessage(ctx, repo.SendRequest{
		ChatID:     uc.cfg.AdminChatID,
		Text:       fillProfilePlaceholders(tmpl, profile),
		MarkdownV2: true,
	})
	return err
}

// fillProfilePlaceholders substitutes each template field literally and
// only at its first occurrence; a duplicated placeholder stays as-is.
func fillProfilePlaceholders(tmpl string, p *domain.UserProfile) string {
	text := tmpl
	for _, sub := range []struct{ key, val string }{
		{"{{username}}", p.Username},
		{"{{user_id}}", p.UserID},
		{"{{language}}", p.Language},
		{"{{first_seen}}", domain.FormatTime(p.FirstSeen)},
		{"{{message_count}}", strconv.FormatInt(p.MessageCount, 10)},
		{"{{last_active}}", domain.FormatTime(p.LastActive)},
	} {
		text = strings.Replace(text, sub.key, domain.EscapeMarkdownV2(sub.val), 1)
	}
	return text
}
