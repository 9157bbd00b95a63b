package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nfdbot/telegram-relay/internal/biz/domain"
	"github.com/nfdbot/telegram-relay/internal/biz/repo"
	"github.com/nfdbot/telegram-relay/internal/biz/usecase"
)

// Fixed user-facing texts.
const (
	textUsage      = "Usage: reply to a forwarded message to answer it, or use `/block`, `/unblock`, `/checkblock`"
	textInvalidID  = "User ID must be digits only"
	textSelfBlock  = "You cannot block yourself"
	textNoMapping  = "No relay mapping found for that message"
	textBlocked    = "You are blocked"
	textNoCommands = "⚠️ Commands are not allowed here"
	textReceiptTip = "✉️ Message received, will reply soon"
)

// RouterConfig is the static routing policy.
type RouterConfig struct {
	AdminChatID     int64
	StartMessageURL string
	StartButton     repo.InlineButton
	TipInterval     time.Duration
	TipLifetime     time.Duration // how long a receipt tip stays before deletion
}

// Router is the routing engine. Route is its single entry point,
// invoked once per inbound update.
type Router struct {
	cfg     RouterConfig
	gateway repo.Gateway
	source  repo.DocumentSource
	block   *usecase.BlockUsecase
	gate    *usecase.RateGateUsecase
	relay   *usecase.RelayUsecase
	notify  *usecase.NotifyUsecase

	handlesMu sync.Mutex
	handles   []*DeleteHandle
}

// NewRouter creates the routing engine.
func NewRouter(cfg RouterConfig, gateway repo.Gateway, source repo.DocumentSource, block *usecase.BlockUsecase, gate *usecase.RateGateUsecase, relay *usecase.RelayUsecase, notify *usecase.NotifyUsecase) *Router {
	if cfg.TipInterval == 0 {
		cfg.TipInterval = 10 * time.Second
	}
	if cfg.TipLifetime == 0 {
		cfg.TipLifetime = 10 * time.Second
	}
	return &Router{
		cfg:     cfg,
		gateway: gateway,
		source:  source,
		block:   block,
		gate:    gate,
		relay:   relay,
		notify:  notify,
	}
}

// Route decides the disposition of one inbound update: start flow,
// admin dispatch or guest dispatch, first match wins.
func (r *Router) Route(ctx context.Context, update *domain.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}
	msg := update.Message

	if msg.Text == "/start" {
		return r.handleStart(ctx, msg)
	}
	if msg.Chat.ID == r.cfg.AdminChatID {
		return r.handleAdmin(ctx, msg)
	}
	return r.handleGuest(ctx, msg)
}

// handleStart fetches the welcome template, fills its placeholders and
// sends it back with the external link button attached.
func (r *Router) handleStart(ctx context.Context, msg *domain.Message) error {
	if msg.From == nil {
		return nil
	}

	tmpl, err := r.source.Fetch(ctx, r.cfg.StartMessageURL)
	if err != nil {
		return fmt.Errorf("fetch start message: %w", err)
	}

	text := tmpl
	text = strings.Replace(text, "{{username}}", domain.EscapeMarkdownV2(msg.From.DisplayName()), 1)
	text = strings.Replace(text, "{{user_id}}", domain.EscapeMarkdownV2(strconv.FormatInt(msg.From.ID, 10)), 1)
	text = strings.Replace(text, "{{user_link}}", msg.From.ProfileLink(), 1)

	_, err = r.gateway.SendMessage(ctx, repo.SendRequest{
		ChatID:     msg.Chat.ID,
		Text:       text,
		MarkdownV2: true,
		Buttons:    []repo.InlineButton{r.cfg.StartButton},
	})
	return err
}

// handleAdmin dispatches an administrator message: parametrized block
// commands first, then reply-scoped commands, then a plain reply that
// is copied back to the originating guest.
func (r *Router) handleAdmin(ctx context.Context, msg *domain.Message) error {
	cmd := domain.ParseAdminCommand(msg.Text)

	switch cmd.Kind {
	case domain.AdminCmdCheckBlockID, domain.AdminCmdBlockID, domain.AdminCmdUnblockID:
		if !domain.IsValidUserID(cmd.Arg) {
			return r.replyAdmin(ctx, textInvalidID)
		}
		return r.runBlockAction(ctx, cmd.Kind, strings.TrimSpace(cmd.Arg))
	}

	if msg.ReplyTo == nil {
		return r.replyAdmin(ctx, textUsage)
	}

	switch cmd.Kind {
	case domain.AdminCmdCheckBlock, domain.AdminCmdBlock, domain.AdminCmdUnblock:
		guestChatID, err := r.resolveReply(ctx, msg)
		if err != nil || guestChatID == 0 {
			return err
		}
		return r.runBlockAction(ctx, withExplicitID(cmd.Kind), strconv.FormatInt(guestChatID, 10))
	}

	guestChatID, err := r.resolveReply(ctx, msg)
	if err != nil || guestChatID == 0 {
		return err
	}
	_, err = r.gateway.CopyMessage(ctx, guestChatID, msg.Chat.ID, msg.MessageID)
	return err
}

// resolveReply maps the replied-to forwarded message back to its guest
// chat. A lookup miss is reported to the admin and yields (0, nil) so
// no gateway call is attempted with an invalid target.
func (r *Router) resolveReply(ctx context.Context, msg *domain.Message) (int64, error) {
	guestChatID, err := r.relay.Resolve(ctx, msg.ReplyTo.MessageID)
	if err != nil {
		if errors.Is(err, usecase.ErrMappingNotFound) {
			return 0, r.replyAdmin(ctx, textNoMapping)
		}
		return 0, err
	}
	return guestChatID, nil
}

// withExplicitID maps a zero-argument command kind to its parametrized
// counterpart once the target id has been resolved.
func withExplicitID(kind domain.AdminCommandKind) domain.AdminCommandKind {
	switch kind {
	case domain.AdminCmdBlock:
		return domain.AdminCmdBlockID
	case domain.AdminCmdUnblock:
		return domain.AdminCmdUnblockID
	case domain.AdminCmdCheckBlock:
		return domain.AdminCmdCheckBlockID
	}
	return kind
}

// runBlockAction executes one block-registry action against an
// explicit id and confirms the outcome to the admin.
func (r *Router) runBlockAction(ctx context.Context, kind domain.AdminCommandKind, id string) error {
	uid := "UID:`" + domain.EscapeMarkdownV2(id) + "`"

	switch kind {
	case domain.AdminCmdBlockID:
		if id == strconv.FormatInt(r.cfg.AdminChatID, 10) {
			return r.replyAdmin(ctx, textSelfBlock)
		}
		if err := r.block.Block(ctx, id); err != nil {
			return err
		}
		return r.replyAdmin(ctx, uid+" blocked successfully")

	case domain.AdminCmdUnblockID:
		if err := r.block.Unblock(ctx, id); err != nil {
			return err
		}
		return r.replyAdmin(ctx, uid+" unblocked successfully")

	case domain.AdminCmdCheckBlockID:
		blocked, err := r.block.IsBlocked(ctx, id)
		if err != nil {
			return err
		}
		if blocked {
			return r.replyAdmin(ctx, uid+" blocked")
		}
		return r.replyAdmin(ctx, uid+" not blocked")
	}
	return nil
}

// handleGuest runs the guest pipeline: command scold, block check,
// receipt tip, relay to admin, then the notification flow.
func (r *Router) handleGuest(ctx context.Context, msg *domain.Message) error {
	chatID := msg.Chat.ID
	chatKey := strconv.FormatInt(chatID, 10)

	if strings.HasPrefix(msg.Text, "/") {
		_, err := r.gateway.SendMessage(ctx, repo.SendRequest{
			ChatID:     chatID,
			Text:       domain.EscapeMarkdownV2(textNoCommands),
			MarkdownV2: true,
		})
		return err
	}

	blocked, err := r.block.IsBlocked(ctx, chatKey)
	if err != nil {
		return err
	}
	if blocked {
		_, err := r.gateway.SendMessage(ctx, repo.SendRequest{
			ChatID:     chatID,
			Text:       domain.EscapeMarkdownV2(textBlocked),
			MarkdownV2: true,
		})
		return err
	}

	if err := r.sendReceiptTip(ctx, chatID, chatKey); err != nil {
		fmt.Printf("[Router] receipt tip for %s failed: %v\n", chatKey, err)
	}

	forwarded, err := r.gateway.ForwardMessage(ctx, r.cfg.AdminChatID, chatID, msg.MessageID)
	if err != nil {
		// The notification flow still runs on a failed relay.
		fmt.Printf("[Router] forward from %s failed: %v\n", chatKey, err)
	} else if err := r.relay.SaveMapping(ctx, forwarded.MessageID, chatID); err != nil {
		return fmt.Errorf("save relay mapping: %w", err)
	}

	return r.notify.Notify(ctx, msg)
}

// sendReceiptTip sends the one-per-window acknowledgment and schedules
// its deletion. The relay that follows does not wait for the delete.
func (r *Router) sendReceiptTip(ctx context.Context, chatID int64, chatKey string) error {
	open, err := r.gate.TryAcquire(ctx, usecase.TipGatePrefix, chatKey, r.cfg.TipInterval)
	if err != nil || !open {
		return err
	}

	sent, err := r.gateway.SendMessage(ctx, repo.SendRequest{
		ChatID:     chatID,
		Text:       domain.EscapeMarkdownV2(textReceiptTip),
		MarkdownV2: true,
	})
	if err != nil {
		return err
	}

	r.scheduleDelete(chatID, sent.MessageID)
	return nil
}

func (r *Router) replyAdmin(ctx context.Context, text string) error {
	_, err := r.gateway.SendMessage(ctx, repo.SendRequest{
		ChatID:     r.cfg.AdminChatID,
		Text:       text,
		MarkdownV2: true,
	})
	return err
}

// DeleteHandle is one scheduled message deletion. Cancel is exposed so
// a shutdown path can drop pending deletions without restructuring.
type DeleteHandle struct {
	timer *time.Timer
	done  chan struct{}
}

// Cancel stops the pending deletion if it has not fired yet.
func (h *DeleteHandle) Cancel() bool {
	return h.timer.Stop()
}

// Done is closed after the deletion attempt has run.
func (h *DeleteHandle) Done() <-chan struct{} {
	return h.done
}

// scheduleDelete spawns an independent delayed task that deletes the
// message after the configured lifetime. The handle is tracked before
// the timer is armed and untracked once the deletion has run, so the
// pending set holds only live timers.
func (r *Router) scheduleDelete(chatID, messageID int64) *DeleteHandle {
	h := &DeleteHandle{done: make(chan struct{})}
	r.track(h)
	h.timer = time.AfterFunc(r.cfg.TipLifetime, func() {
		defer close(h.done)
		defer r.untrack(h)
		if err := r.gateway.DeleteMessage(context.Background(), chatID, messageID); err != nil {
			fmt.Printf("[Router] delete tip %d in chat %d failed: %v\n", messageID, chatID, err)
		}
	})
	return h
}

func (r *Router) track(h *DeleteHandle) {
	r.handlesMu.Lock()
	r.handles = append(r.handles, h)
	r.handlesMu.Unlock()
}

func (r *Router) untrack(h *DeleteHandle) {
	r.handlesMu.Lock()
	defer r.handlesMu.Unlock()
	for i, tracked := range r.handles {
		if tracked == h {
			r.handles = append(r.handles[:i], r.handles[i+1:]...)
			return
		}
	}
}

// PendingDeletes returns the deletion handles that have not run yet.
func (r *Router) PendingDeletes() []*DeleteHandle {
	r.handlesMu.Lock()
	defer r.handlesMu.Unlock()
	out := make([]*DeleteHandle, len(r.handles))
	copy(out, r.handles)
	return out
}
