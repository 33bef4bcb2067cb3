package ingest

import (
	"math/rand"
	"time"
)

// backoff computes bounded exponential reconnect delays. Jitter
// desynchronizes clients retrying against the same recovering endpoint.
type backoff struct {
	initial time.Duration
	max     time.Duration
	jitter  time.Duration
	floor   time.Duration
}

func defaultBackoff() backoff {
	return backoff{
		initial: 500 * time.Millisecond,
		max:     15 * time.Second,
		jitter:  250 * time.Millisecond,
		floor:   50 * time.Millisecond,
	}
}

// delay returns min(max, initial·2^(attempt−1)) ± jitter, floored at a small
// positive minimum. The un-jittered component is non-decreasing in attempt.
func (b backoff) delay(attempt int, rng *rand.Rand) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := b.max
	// Guard the shift: past 62 doublings the cap has long been reached.
	if attempt-1 < 62 {
		if doubled := b.initial << (attempt - 1); doubled > 0 && doubled < b.max {
			delay = doubled
		}
	}

	if b.jitter > 0 && rng != nil {
		delay += time.Duration(rng.Int63n(int64(2*b.jitter)+1)) - b.jitter
	}

	if delay < b.floor {
		delay = b.floor
	}

	return delay
}
