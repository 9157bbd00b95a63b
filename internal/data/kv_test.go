package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := NewKV(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("NewKV failed: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestKVRoundTrip(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	if err := kv.Put(ctx, "msg-map-42", int64(111)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var chatID int64
	found, err := kv.Get(ctx, "msg-map-42", &chatID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || chatID != 111 {
		t.Errorf("Get = (%v, %d), want (true, 111)", found, chatID)
	}
}

func TestKVMissingKey(t *testing.T) {
	kv := newTestKV(t)

	var out string
	found, err := kv.Get(context.Background(), "absent", &out)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("found an absent key")
	}
}

func TestKVOverwrite(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	if err := kv.Put(ctx, "isblocked-111", true); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := kv.Put(ctx, "isblocked-111", false); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var blocked bool
	found, err := kv.Get(ctx, "isblocked-111", &blocked)
	if err != nil || !found {
		t.Fatalf("Get = (%v, %v)", found, err)
	}
	if blocked {
		t.Error("overwrite did not take")
	}
}

func TestKVStoresStructs(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	type point struct {
		X int64 `json:"x"`
		Y int64 `json:"y"`
	}
	if err := kv.Put(ctx, "p", point{X: 1, Y: 2}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var got point
	found, err := kv.Get(ctx, "p", &got)
	if err != nil || !found {
		t.Fatalf("Get = (%v, %v)", found, err)
	}
	if got != (point{X: 1, Y: 2}) {
		t.Errorf("got %+v", got)
	}
}

func TestKVDeletePrefixOlderThan(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	for _, key := range []string{"msg-map-1", "msg-map-2", "isblocked-111"} {
		if err := kv.Put(ctx, key, int64(1)); err != nil {
			t.Fatalf("Put %s failed: %v", key, err)
		}
	}

	// Nothing has aged past a cutoff in the past.
	n, err := kv.DeletePrefixOlderThan(ctx, "msg-map-", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeletePrefixOlderThan failed: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted %d keys with a past cutoff, want 0", n)
	}

	// A future cutoff removes every prefixed key, others untouched.
	n, err = kv.DeletePrefixOlderThan(ctx, "msg-map-", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeletePrefixOlderThan failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d keys, want 2", n)
	}

	var v int64
	if found, _ := kv.Get(ctx, "msg-map-1", &v); found {
		t.Error("msg-map-1 survived the sweep")
	}
	if found, _ := kv.Get(ctx, "isblocked-111", &v); !found {
		t.Error("sweep removed a key outside the prefix")
	}
}

func TestMemoryKVMatchesSQLiteSemantics(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	var out int64
	found, err := kv.Get(ctx, "absent", &out)
	if err != nil || found {
		t.Fatalf("Get absent = (%v, %v)", found, err)
	}

	if err := kv.Put(ctx, "msg-map-7", int64(222)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	found, err = kv.Get(ctx, "msg-map-7", &out)
	if err != nil || !found || out != 222 {
		t.Fatalf("Get = (%v, %d, %v), want (true, 222, nil)", found, out, err)
	}

	n, err := kv.DeletePrefixOlderThan(ctx, "msg-map-", time.Now().Add(time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("DeletePrefixOlderThan = (%d, %v), want (1, nil)", n, err)
	}
	if kv.Len() != 0 {
		t.Errorf("Len = %d after sweep, want 0", kv.Len())
	}
}
