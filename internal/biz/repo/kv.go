package repo

import (
	"context"
	"time"
)

// KVStore is a durable string-keyed store of JSON-encoded values.
// Keys are namespaced by a purpose prefix followed by a dynamic id
// (chat id or message id), so distinct concerns never collide.
type KVStore interface {
	// Get unmarshals the value stored under key into out and reports
	// whether the key exists. A missing key is not an error.
	Get(ctx context.Context, key string, out any) (bool, error)

	// Put stores the JSON encoding of value under key, replacing any
	// previous value. Last write wins under concurrency.
	Put(ctx context.Context, key string, value any) error

	// DeletePrefixOlderThan removes keys with the given prefix whose
	// last write precedes before. Returns the number of keys removed.
	DeletePrefixOlderThan(ctx context.Context, prefix string, before time.Time) (int64, error)
}
