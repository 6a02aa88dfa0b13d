package domain

import (
	"testing"
	"time"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func TestDecide_AllowsWithoutRecord(t *testing.T) {
	dec := Decide(nil, t0, Window)
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if !dec.AllowedAt.Equal(t0) {
		t.Fatalf("expected AllowedAt=%v, got %v", t0, dec.AllowedAt)
	}
	if dec.RetryAfterSeconds != 0 {
		t.Fatalf("expected RetryAfterSeconds=0 when allowed, got %d", dec.RetryAfterSeconds)
	}
}

func TestDecide_DeniesInsideWindow(t *testing.T) {
	prev := &ClientRecord{Key: "k", LastPurchaseAt: t0}

	cases := []struct {
		elapsed time.Duration
		retry   int
	}{
		{0, 60},
		{1 * time.Millisecond, 60},
		{999 * time.Millisecond, 60},
		{1000 * time.Millisecond, 59},
		{1001 * time.Millisecond, 59},
		{30 * time.Second, 30},
		{59*time.Second + 1*time.Millisecond, 1},
		{Window - time.Millisecond, 1},
	}

	for _, tc := range cases {
		dec := Decide(prev, t0.Add(tc.elapsed), Window)
		if dec.Allowed {
			t.Fatalf("elapsed=%s: expected denied", tc.elapsed)
		}
		if dec.RetryAfterSeconds != tc.retry {
			t.Fatalf("elapsed=%s: expected retry=%d, got %d", tc.elapsed, tc.retry, dec.RetryAfterSeconds)
		}
		if !dec.NextAllowedAt.Equal(t0.Add(Window)) {
			t.Fatalf("elapsed=%s: expected NextAllowedAt=%v, got %v", tc.elapsed, t0.Add(Window), dec.NextAllowedAt)
		}
	}
}

func TestDecide_BoundaryIsInclusive(t *testing.T) {
	prev := &ClientRecord{Key: "k", LastPurchaseAt: t0}

	dec := Decide(prev, t0.Add(Window), Window)
	if !dec.Allowed {
		t.Fatalf("expected allowed exactly at the window boundary")
	}
}

func TestDecide_ClockGoingBackwardsCapsRetry(t *testing.T) {
	prev := &ClientRecord{Key: "k", LastPurchaseAt: t0}

	dec := Decide(prev, t0.Add(-5*time.Second), Window)
	if dec.Allowed {
		t.Fatalf("expected denied")
	}
	if dec.RetryAfterSeconds != 60 {
		t.Fatalf("expected retry capped at 60, got %d", dec.RetryAfterSeconds)
	}
	if !dec.NextAllowedAt.Equal(t0.Add(Window)) {
		t.Fatalf("expected NextAllowedAt relative to last purchase")
	}
}

func TestIsStale(t *testing.T) {
	rec := ClientRecord{Key: "k", LastPurchaseAt: t0}
	limit := Window * EvictionMultiple

	if IsStale(rec, t0.Add(limit-time.Millisecond), Window) {
		t.Fatalf("expected fresh just before the eviction limit")
	}
	if IsStale(rec, t0.Add(limit), Window) {
		t.Fatalf("expected fresh exactly at the eviction limit")
	}
	if !IsStale(rec, t0.Add(limit+time.Millisecond), Window) {
		t.Fatalf("expected stale after the eviction limit")
	}
}

func TestWallClock_MillisecondResolution(t *testing.T) {
	now := WallClock()
	if now.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("expected ms resolution, got %v", now)
	}
}
