package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nfdbot/telegram-relay/internal/biz/domain"
	"github.com/nfdbot/telegram-relay/internal/biz/repo"
)

const (
	firstSeenKeyPrefix = "first-seen-"
	msgCountKeyPrefix  = "msg-count-"
)

// ProfileUsecase accumulates per-guest activity used in admin
// notifications.
type ProfileUsecase struct {
	kv  repo.KVStore
	now func() time.Time
}

// NewProfileUsecase creates a new profile collector.
func NewProfileUsecase(kv repo.KVStore) *ProfileUsecase {
	return &ProfileUsecase{kv: kv, now: time.Now}
}

// Collect returns the sender's profile, lazily initializing the
// first-seen timestamp on first contact and incrementing the stored
// message count. First-seen, once set, is never overwritten.
func (uc *ProfileUsecase) Collect(ctx context.Context, msg *domain.Message) (*domain.UserProfile, error) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	now := uc.now()

	var firstSeenMs int64
	ok, err := uc.kv.Get(ctx, firstSeenKeyPrefix+chatID, &firstSeenMs)
	if err != nil {
		return nil, fmt.Errorf("get first seen: %w", err)
	}
	if !ok {
		firstSeenMs = now.UnixMilli()
		if err := uc.kv.Put(ctx, firstSeenKeyPrefix+chatID, firstSeenMs); err != nil {
			return nil, fmt.Errorf("put first seen: %w", err)
		}
	}

	var count int64
	if _, err := uc.kv.Get(ctx, msgCountKeyPrefix+chatID, &count); err != nil {
		return nil, fmt.Errorf("get message count: %w", err)
	}
	count++
	if err := uc.kv.Put(ctx, msgCountKeyPrefix+chatID, count); err != nil {
		return nil, fmt.Errorf("put message count: %w", err)
	}

	language := "unknown"
	if msg.From.LanguageCode != "" {
		language = msg.From.LanguageCode
	}

	return &domain.UserProfile{
		Username:     msg.From.DisplayName(),
		UserID:       strconv.FormatInt(msg.From.ID, 10),
		Language:     language,
		FirstSeen:    time.UnixMilli(firstSeenMs),
		LastActive:   now,
		MessageCount: count,
	}, nil
}
