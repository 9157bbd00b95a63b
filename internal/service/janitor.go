package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nfdbot/telegram-relay/internal/biz/usecase"
)

// Janitor prunes relay mappings older than their TTL on a fixed
// interval, keeping the mapping namespace from growing without bound.
type Janitor struct {
	relay *usecase.RelayUsecase
	ttl   time.Duration

	pollInterval time.Duration
	running      bool
	stopCh       chan struct{}
	wg           sync.WaitGroup
}

// NewJanitor creates a janitor removing mappings older than ttl.
func NewJanitor(relay *usecase.RelayUsecase, ttl time.Duration) *Janitor {
	return &Janitor{
		relay:        relay,
		ttl:          ttl,
		pollInterval: time.Hour,
		stopCh:       make(chan struct{}),
	}
}

// Start starts the cleanup loop.
func (j *Janitor) Start() {
	if j.running {
		return
	}
	j.running = true
	j.wg.Add(1)
	go j.loop()
	fmt.Printf("[Janitor] Started with TTL %v\n", j.ttl)
}

// Stop stops the cleanup loop.
func (j *Janitor) Stop() {
	if !j.running {
		return
	}
	j.running = false
	close(j.stopCh)
	j.wg.Wait()
	fmt.Println("[Janitor] Stopped")
}

func (j *Janitor) loop() {
	defer j.wg.Done()

	j.sweep()

	ticker := time.NewTicker(j.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopCh:
			return
		}
	}
}

func (j *Janitor) sweep() {
	removed, err := j.relay.CleanupOlderThan(context.Background(), time.Now().Add(-j.ttl))
	if err != nil {
		fmt.Printf("[Janitor] Cleanup failed: %v\n", err)
		return
	}
	if removed > 0 {
		fmt.Printf("[Janitor] Removed %d stale relay mappings\n", removed)
	}
}
