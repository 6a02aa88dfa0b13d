package infra

import (
	"testing"
	"time"

	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/domain"
)

func TestStore_GetSameKeyReturnsSameLimiter(t *testing.T) {
	s := NewStore(10, 1)

	l1 := s.Get(domain.Key("10.0.0.1"))
	l2 := s.Get(domain.Key("10.0.0.1"))
	if l1 != l2 {
		t.Fatalf("expected same limiter pointer for same key")
	}
}

func TestStore_LowBurstRejectsSecondImmediateAllow(t *testing.T) {
	s := NewStore(0.02, 1)

	lim := s.Get(domain.Key("10.0.0.1"))
	if ok, _ := lim.Take(); !ok {
		t.Fatalf("expected first Take to be true")
	}
	if ok, _ := lim.Take(); ok {
		t.Fatalf("expected second immediate Take to be false (burst=1)")
	}
}

func TestStore_TakeReportsWaitUntilNextToken(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	s := NewStore(1, 1, WithStoreClock(func() time.Time { return now }))
	lim := s.Get(domain.Key("10.0.0.1"))

	if ok, _ := lim.Take(); !ok {
		t.Fatalf("expected first Take to pass")
	}

	ok, wait := lim.Take()
	if ok {
		t.Fatalf("expected empty bucket to deny")
	}
	if wait < 999*time.Millisecond || wait > time.Second {
		t.Fatalf("expected wait close to 1s, got %s", wait)
	}

	now = now.Add(400 * time.Millisecond)
	ok, wait = lim.Take()
	if ok {
		t.Fatalf("expected deny before refill")
	}
	if wait < 590*time.Millisecond || wait > 610*time.Millisecond {
		t.Fatalf("expected wait close to 600ms, got %s", wait)
	}

	// negar não consome token
	now = now.Add(700 * time.Millisecond)
	if ok, _ := lim.Take(); !ok {
		t.Fatalf("expected Take to pass after refill")
	}
}

func TestStore_CleanupRemovesIdleEntries(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	s := NewStore(10, 1,
		WithIdleTTL(time.Minute),
		WithCleanupEvery(0),
		WithStoreClock(func() time.Time { return now }),
	)

	before := s.Get(domain.Key("10.0.0.1"))

	now = now.Add(30 * time.Second)
	if n := s.Cleanup(); n != 0 {
		t.Fatalf("expected nothing removed before idle TTL, got %d", n)
	}

	now = now.Add(31 * time.Second)
	if n := s.Cleanup(); n != 1 {
		t.Fatalf("expected 1 entry removed, got %d", n)
	}

	after := s.Get(domain.Key("10.0.0.1"))
	if before == after {
		t.Fatalf("expected limiter to be recreated after cleanup")
	}
}

func TestStore_RetryAfter(t *testing.T) {
	if got := NewStore(20, 40).RetryAfter(); got != time.Second {
		t.Fatalf("expected 1s floor for high rps, got %s", got)
	}
	if got := NewStore(0.5, 1).RetryAfter(); got != 2*time.Second {
		t.Fatalf("expected 2s for 0.5 rps, got %s", got)
	}
}
