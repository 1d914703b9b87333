package judge

import (
	"testing"
	"time"
)

func TestRateLimiter_UnderBudgetNeverSleeps(t *testing.T) {
	r := NewRateLimiter(3, time.Minute)
	slept := time.Duration(0)
	r.sleep = func(d time.Duration) { slept += d }

	for i := 0; i < 3; i++ {
		r.Wait()
	}
	if slept != 0 {
		t.Errorf("under budget should not sleep, slept %v", slept)
	}
}

func TestRateLimiter_SleepsUntilWindowFrees(t *testing.T) {
	r := NewRateLimiter(2, time.Minute)

	now := time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	var slept time.Duration
	r.sleep = func(d time.Duration) { slept += d }

	r.Wait() // t=0
	now = now.Add(10 * time.Second)
	r.Wait() // t=10s
	now = now.Add(10 * time.Second)
	r.Wait() // t=20s, budget exhausted

	// Oldest call was 20s ago; must sleep the remaining 40s of the window.
	if slept != 40*time.Second {
		t.Errorf("expected 40s sleep, got %v", slept)
	}
}

func TestRateLimiter_OldCallsExpire(t *testing.T) {
	r := NewRateLimiter(2, time.Minute)

	now := time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	var slept time.Duration
	r.sleep = func(d time.Duration) { slept += d }

	r.Wait()
	r.Wait()
	// Both calls fall out of the window; no sleep needed.
	now = now.Add(2 * time.Minute)
	r.Wait()
	if slept != 0 {
		t.Errorf("expired calls should free the budget, slept %v", slept)
	}
}
