package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/nfdbot/telegram-relay/internal/biz/repo"
)

// Gate key prefixes. Each purpose gets its own namespace so the
// receipt-tip cooldown and the admin-notification cooldown for the
// same chat never collide.
const (
	TipGatePrefix    = "last-tip-"
	NotifyGatePrefix = "lastmsg-"
)

// RateGateUsecase implements named per-subject cooldowns backed by the
// KV store. A gate fires at most once per window; the stored state is
// the last fire time in Unix milliseconds.
type RateGateUsecase struct {
	kv  repo.KVStore
	now func() time.Time
}

// NewRateGateUsecase creates a new rate gate.
func NewRateGateUsecase(kv repo.KVStore) *RateGateUsecase {
	return &RateGateUsecase{kv: kv, now: time.Now}
}

// TryAcquire reports whether the gate named prefix+subject may fire
// now, stamping the fire time when it may. Concurrent callers race on
// the stored timestamp with last-write-wins semantics; an occasional
// double fire under true concurrency is tolerated.
func (uc *RateGateUsecase) TryAcquire(ctx context.Context, prefix, subject string, window time.Duration) (bool, error) {
	key := prefix + subject

	var last int64
	ok, err := uc.kv.Get(ctx, key, &last)
	if err != nil {
		return false, fmt.Errorf("get rate gate %s: %w", key, err)
	}

	nowMs := uc.now().UnixMilli()
	if ok && nowMs-last <= window.Milliseconds() {
		return false, nil
	}

	if err := uc.kv.Put(ctx, key, nowMs); err != nil {
		return false, fmt.Errorf("put rate gate %s: %w", key, err)
	}
	return true, nil
}
