package data

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryKV is an in-memory KVStore used by tests. It mirrors the
// sqlite store's semantics, including write timestamps for cleanup.
type MemoryKV struct {
	mu      sync.RWMutex
	values  map[string]string
	touched map[string]time.Time
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		values:  make(map[string]string),
		touched: make(map[string]time.Time),
	}
}

func (s *MemoryKV) Get(ctx context.Context, key string, out any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode value for %s: %w", key, err)
	}
	return true, nil
}

func (s *MemoryKV) Put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}
	s.mu.Lock()
	s.values[key] = string(raw)
	s.touched[key] = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *MemoryKV) DeletePrefixOlderThan(ctx context.Context, prefix string, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, at := range s.touched {
		if strings.HasPrefix(key, prefix) && at.Before(before) {
			delete(s.values, key)
			delete(s.touched, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored keys.
func (s *MemoryKV) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
