package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/nfdbot/telegram-relay/internal/data"
)

func TestRateGateFiresOncePerWindow(t *testing.T) {
	uc := NewRateGateUsecase(data.NewMemoryKV())
	now := time.Unix(1700000000, 0)
	uc.now = func() time.Time { return now }
	ctx := context.Background()

	open, err := uc.TryAcquire(ctx, NotifyGatePrefix, "111", time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !open {
		t.Fatal("first acquire should fire")
	}

	now = now.Add(30 * time.Minute)
	if open, _ = uc.TryAcquire(ctx, NotifyGatePrefix, "111", time.Hour); open {
		t.Fatal("acquire inside the window must not fire")
	}

	now = now.Add(31 * time.Minute)
	if open, _ = uc.TryAcquire(ctx, NotifyGatePrefix, "111", time.Hour); !open {
		t.Fatal("acquire after the window should fire")
	}
}

func TestRateGateSubjectsAreIndependent(t *testing.T) {
	uc := NewRateGateUsecase(data.NewMemoryKV())
	ctx := context.Background()

	if open, _ := uc.TryAcquire(ctx, TipGatePrefix, "a", time.Hour); !open {
		t.Fatal("subject a should fire")
	}
	if open, _ := uc.TryAcquire(ctx, TipGatePrefix, "b", time.Hour); !open {
		t.Fatal("subject b should fire despite a's gate")
	}
}

func TestRateGatePurposesDoNotCollide(t *testing.T) {
	uc := NewRateGateUsecase(data.NewMemoryKV())
	ctx := context.Background()

	if open, _ := uc.TryAcquire(ctx, TipGatePrefix, "111", time.Hour); !open {
		t.Fatal("tip gate should fire")
	}
	// Same chat, different purpose: must not be suppressed by the tip.
	if open, _ := uc.TryAcquire(ctx, NotifyGatePrefix, "111", time.Hour); !open {
		t.Fatal("notify gate should fire independently of the tip gate")
	}
}
