package worker

import (
	"testing"
	"time"
)

func TestExponentialBackoffGrows(t *testing.T) {
	// jitter adds up to 250ms on top of the base delay
	const jitter = 250 * time.Millisecond

	tests := []struct {
		attempt int
		base    time.Duration
	}{
		{0, 2 * time.Second},
		{1, 4 * time.Second},
		{2, 8 * time.Second},
		{3, 16 * time.Second},
	}

	for _, tc := range tests {
		got := ExponentialBackoff(tc.attempt)

		if got < tc.base || got > tc.base+jitter {
			t.Fatalf("attempt %d: got %v, want within [%v, %v]", tc.attempt, got, tc.base, tc.base+jitter)
		}
	}
}

func TestExponentialBackoffCapped(t *testing.T) {
	const cap = 5 * time.Minute
	const jitter = 250 * time.Millisecond

	for _, attempt := range []int{10, 15, 20} {
		got := ExponentialBackoff(attempt)

		if got < cap || got > cap+jitter {
			t.Fatalf("attempt %d: got %v, want capped near %v", attempt, got, cap)
		}
	}
}
