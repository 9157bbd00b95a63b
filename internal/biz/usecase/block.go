package usecase

import (
	"context"
	"fmt"

	"github.com/nfdbot/telegram-relay/internal/biz/repo"
)

const blockKeyPrefix = "isblocked-"

// BlockUsecase maintains per-guest block state in the KV store. All
// operations touch the store directly; there is no cache.
type BlockUsecase struct {
	kv repo.KVStore
}

// NewBlockUsecase creates a new block registry.
func NewBlockUsecase(kv repo.KVStore) *BlockUsecase {
	return &BlockUsecase{kv: kv}
}

// IsBlocked reports whether the chat id is currently blocked. Unknown
// ids default to unblocked.
func (uc *BlockUsecase) IsBlocked(ctx context.Context, chatID string) (bool, error) {
	var blocked bool
	ok, err := uc.kv.Get(ctx, blockKeyPrefix+chatID, &blocked)
	if err != nil {
		return false, fmt.Errorf("get block state: %w", err)
	}
	return ok && blocked, nil
}

// Block marks the chat id blocked. Idempotent.
func (uc *BlockUsecase) Block(ctx context.Context, chatID string) error {
	if err := uc.kv.Put(ctx, blockKeyPrefix+chatID, true); err != nil {
		return fmt.Errorf("put block state: %w", err)
	}
	return nil
}

// Unblock marks the chat id unblocked. Idempotent.
func (uc *BlockUsecase) Unblock(ctx context.Context, chatID string) error {
	if err := uc.kv.Put(ctx, blockKeyPrefix+chatID, false); err != nil {
		return fmt.Errorf("put block state: %w", err)
	}
	return nil
}
