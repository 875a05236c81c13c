// Package algorithms holds small scheduling helpers shared by the executors.
package algorithms

import (
	"math/rand/v2"
	"time"
)

const (
	maxAttempts = 63 // Prevent overflow in backoff calculation
)

// Backoff computes how long an idle worker sleeps after repeated misses.
type Backoff interface {
	// NextDelay returns the delay for the given 0-indexed miss.
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay on every attempt:
// initialDelay * 2^attempt, capped at maxDelay.
type ExponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewExponentialBackoff creates an exponential backoff.
func NewExponentialBackoff(initialDelay, maxDelay time.Duration) ExponentialBackoff {
	return ExponentialBackoff{initialDelay: initialDelay, maxDelay: maxDelay}
}

func (eb ExponentialBackoff) NextDelay(attempt int) time.Duration {
	return calcExponentialDelay(attempt, eb.initialDelay, eb.maxDelay)
}

// JitteredBackoff spreads an exponential delay by ±jitterFactor so idle
// workers parked at the same moment do not all wake together.
//
// A JitteredBackoff is owned by one worker and is not safe for concurrent
// use.
type JitteredBackoff struct {
	ExponentialBackoff
	jitterFactor float64
	rng          *rand.Rand
}

// NewJitteredBackoff creates a jittered backoff seeded with seed.
// jitterFactor is clamped to [0, 1].
func NewJitteredBackoff(initialDelay, maxDelay time.Duration, jitterFactor float64, seed uint64) *JitteredBackoff {
	return &JitteredBackoff{
		ExponentialBackoff: NewExponentialBackoff(initialDelay, maxDelay),
		jitterFactor:       clamp(jitterFactor, 0, 1),
		rng:                rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), // #nosec G404 -- jitter only
	}
}

func (jb *JitteredBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}

	base := calcExponentialDelay(attempt, jb.initialDelay, jb.maxDelay)
	multiplier := 1.0 + (jb.rng.Float64()*2-1)*jb.jitterFactor
	return clamp(time.Duration(float64(base)*multiplier), 0, jb.maxDelay)
}

func calcExponentialDelay(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		return 0
	}
	if attempt >= maxAttempts {
		return maxDelay
	}

	delay := time.Duration(int64(1)<<uint(attempt)) * initialDelay
	if delay > maxDelay || delay < 0 {
		return maxDelay
	}
	return delay
}

func clamp[T int | int64 | float64 | time.Duration](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
