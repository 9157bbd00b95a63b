package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nfdbot/telegram-relay/internal/biz/repo"
)

const mappingKeyPrefix = "msg-map-"

// ErrMappingNotFound is returned when an admin-side message id has no
// recorded origin. Callers must not attempt a gateway call with the
// missing target.
var ErrMappingNotFound = errors.New("relay mapping not found")

// RelayUsecase records and resolves the association between a message
// forwarded into the admin chat and the guest chat it came from.
type RelayUsecase struct {
	kv repo.KVStore
}

// NewRelayUsecase creates a new relay mapping store.
func NewRelayUsecase(kv repo.KVStore) *RelayUsecase {
	return &RelayUsecase{kv: kv}
}

// SaveMapping records adminMessageID -> guestChatID. Mappings are
// created only here, right after a successful forward.
func (uc *RelayUsecase) SaveMapping(ctx context.Context, adminMessageID, guestChatID int64) error {
	key := mappingKeyPrefix + strconv.FormatInt(adminMessageID, 10)
	if err := uc.kv.Put(ctx, key, guestChatID); err != nil {
		return fmt.Errorf("put relay mapping: %w", err)
	}
	return nil
}

// Resolve returns the guest chat id the forwarded message originated
// from, or ErrMappingNotFound.
func (uc *RelayUsecase) Resolve(ctx context.Context, adminMessageID int64) (int64, error) {
	key := mappingKeyPrefix + strconv.FormatInt(adminMessageID, 10)

	var guestChatID int64
	ok, err := uc.kv.Get(ctx, key, &guestChatID)
	if err != nil {
		return 0, fmt.Errorf("get relay mapping: %w", err)
	}
	if !ok {
		return 0, ErrMappingNotFound
	}
	return guestChatID, nil
}

// CleanupOlderThan prunes mappings whose last write precedes before.
func (uc *RelayUsecase) CleanupOlderThan(ctx context.Context, before time.Time) (int64, error) {
	return uc.kv.DeletePrefixOlderThan(ctx, mappingKeyPrefix, before)
}
