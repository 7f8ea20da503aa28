package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)

			passed := 0
			for range tt.calls {
				if rl.Allow("test") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)

	if !rl.Allow("key1") {
		t.Error("first request for key1 should pass")
	}
	if rl.Allow("key1") {
		t.Error("second request for key1 should be limited")
	}
	// A different key has its own bucket.
	if !rl.Allow("key2") {
		t.Error("first request for key2 should pass")
	}
}

func TestKeyedRateLimiter_Wait(t *testing.T) {
	rl := New(100, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Burst token plus one refill should both complete within the deadline.
	if err := rl.Wait(ctx, "test"); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if err := rl.Wait(ctx, "test"); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
}

func TestKeyedRateLimiter_WaitCanceled(t *testing.T) {
	rl := New(0.001, 1)
	rl.Allow("test") // Drain the burst token.

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx, "test"); err == nil {
		t.Error("Wait should fail when the context expires first")
	}
}
