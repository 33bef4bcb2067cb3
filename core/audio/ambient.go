package audio

import (
	"math"
	"time"
)

// ambientBed is the continuously running background oscillator. Ducking only
// ever moves its gain; the oscillation itself is unaffected by voice sessions.
type ambientBed struct {
	phase       float64
	wobblePhase float64

	// currentGain converges on targetGain and is never assigned directly
	// after initialization.
	currentGain float64
	targetGain  float64
}

func newAmbientBed(baselineGain float64) ambientBed {
	return ambientBed{currentGain: baselineGain, targetGain: baselineGain}
}

// advanceGain moves currentGain toward targetGain by one tick.
//
// tau is the attack constant while the bed is being ducked and the release
// constant while it recovers, giving a click-free ramp in both directions.
func (b *ambientBed) advanceGain(dt time.Duration, attack, release time.Duration) {
	tau := release
	if b.targetGain < b.currentGain {
		tau = attack
	}

	if tau <= 0 {
		b.currentGain = b.targetGain
		return
	}

	t := clamp(dt.Seconds()/tau.Seconds(), 0, 1)
	b.currentGain += (b.targetGain - b.currentGain) * t
}

// sample produces the next bed sample and advances both accumulators. The
// carrier is slowly frequency modulated by the wobble oscillator.
func (b *ambientBed) sample(baseHz, wobbleHz, wobbleDepthHz float64, sampleRate int) float64 {
	carrierHz := baseHz + wobbleDepthHz*math.Sin(b.wobblePhase)
	value := math.Sin(b.phase) * b.currentGain

	b.phase += 2 * math.Pi * carrierHz / float64(sampleRate)
	b.wobblePhase += 2 * math.Pi * wobbleHz / float64(sampleRate)
	if b.phase > 2*math.Pi {
		b.phase -= 2 * math.Pi
	}
	if b.wobblePhase > 2*math.Pi {
		b.wobblePhase -= 2 * math.Pi
	}

	return value
}

func clamp(value, low, high float64) float64 {
	return math.Min(high, math.Max(low, value))
}
