package algorithms

import (
	"testing"
	"time"
)

func TestExponentialBackoff_NextDelay(t *testing.T) {
	b := NewExponentialBackoff(50*time.Microsecond, 5*time.Millisecond)

	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{"negative attempt", -1, 0},
		{"first attempt", 0, 50 * time.Microsecond},
		{"doubles", 1, 100 * time.Microsecond},
		{"doubles again", 3, 400 * time.Microsecond},
		{"capped", 10, 5 * time.Millisecond},
		{"overflow guarded", 70, 5 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.NextDelay(tt.attempt); got != tt.want {
				t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestJitteredBackoff_StaysWithinBounds(t *testing.T) {
	const factor = 0.25
	b := NewJitteredBackoff(100*time.Microsecond, 2*time.Millisecond, factor, 42)

	for attempt := range 12 {
		base := calcExponentialDelay(attempt, 100*time.Microsecond, 2*time.Millisecond)
		lo := time.Duration(float64(base) * (1 - factor))
		hi := min(time.Duration(float64(base)*(1+factor)), 2*time.Millisecond)

		for range 50 {
			got := b.NextDelay(attempt)
			if got < lo || got > hi {
				t.Fatalf("attempt %d: delay %v outside [%v, %v]", attempt, got, lo, hi)
			}
		}
	}
}

func TestJitteredBackoff_Deterministic(t *testing.T) {
	a := NewJitteredBackoff(time.Millisecond, time.Second, 0.5, 7)
	b := NewJitteredBackoff(time.Millisecond, time.Second, 0.5, 7)

	for attempt := range 8 {
		if x, y := a.NextDelay(attempt), b.NextDelay(attempt); x != y {
			t.Fatalf("attempt %d: same seed gave %v and %v", attempt, x, y)
		}
	}
}

func TestJitteredBackoff_ClampsFactor(t *testing.T) {
	b := NewJitteredBackoff(time.Millisecond, time.Second, 0, 1)
	if got := b.NextDelay(2); got != 4*time.Millisecond {
		t.Errorf("zero jitter should be exact, got %v", got)
	}

	b = NewJitteredBackoff(time.Millisecond, time.Second, 5, 1)
	if b.jitterFactor != 1 {
		t.Errorf("expected factor clamped to 1, got %v", b.jitterFactor)
	}
	if got := b.NextDelay(-3); got != 0 {
		t.Errorf("negative attempt should give 0, got %v", got)
	}
}
