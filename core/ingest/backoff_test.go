package ingest

import (
	"math/rand"
	"testing"
	"time"
)

func TestDelayIsBoundedByMaxPlusJitter(t *testing.T) {
	b := defaultBackoff()
	rng := rand.New(rand.NewSource(1))

	for attempt := 1; attempt <= 64; attempt++ {
		delay := b.delay(attempt, rng)
		if delay > b.max+b.jitter {
			t.Fatalf("attempt %d delay %v exceeds max+jitter %v", attempt, delay, b.max+b.jitter)
		}
		if delay < b.floor {
			t.Fatalf("attempt %d delay %v below floor %v", attempt, delay, b.floor)
		}
	}
}

func TestUnjitteredDelayIsNonDecreasingUntilCap(t *testing.T) {
	b := backoff{initial: 100 * time.Millisecond, max: 5 * time.Second, floor: 10 * time.Millisecond}

	previous := time.Duration(0)
	for attempt := 1; attempt <= 32; attempt++ {
		delay := b.delay(attempt, nil)
		if delay < previous {
			t.Fatalf("delay decreased at attempt %d: %v -> %v", attempt, previous, delay)
		}
		previous = delay
	}
	if previous != b.max {
		t.Fatalf("expected delay to settle at the cap %v, got %v", b.max, previous)
	}
}

func TestDelayNeverGoesBelowFloorEvenWithNegativeJitter(t *testing.T) {
	b := backoff{initial: time.Millisecond, max: time.Second, jitter: 100 * time.Millisecond, floor: 50 * time.Millisecond}
	rng := rand.New(rand.NewSource(7))

	for range 200 {
		if delay := b.delay(1, rng); delay < b.floor {
			t.Fatalf("delay %v fell below floor %v", delay, b.floor)
		}
	}
}
