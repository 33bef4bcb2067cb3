package audio

import (
	"hash/fnv"
	"math"
	"strings"
	"time"
)

// voiceSession is the single foreground voice. At most one exists at any
// instant; starting a new one pre-empts the old one without its completion
// signal.
type voiceSession struct {
	id      string
	agentID string

	// clip is set for verbatim asset playback; nil means synthetic voice.
	clip *Clip
	// clipCursor advances by clipStep per output frame, mapping the clip's
	// native rate onto the engine's so pitch and duration stay verbatim.
	clipCursor float64
	clipStep   float64

	carrierHz float64
	// phase and envelopePhase persist across sample buffers; resetting them
	// between buffers produces audible discontinuities.
	phase         float64
	envelopePhase float64

	elapsed  time.Duration
	duration time.Duration
}

func (s *voiceSession) done() bool {
	return s.elapsed >= s.duration
}

// sample produces the next voice sample in [-1, 1] and advances the session's
// accumulators.
func (s *voiceSession) sample(params SynthParams, sampleRate int) float64 {
	if s.clip != nil {
		at := int(s.clipCursor)
		if at >= len(s.clip.PCM) {
			return 0
		}
		value := float64(s.clip.PCM[at]) / math.MaxInt16
		s.clipCursor += s.clipStep
		return value
	}

	// Raised-cosine pulses at the syllable rate approximate speech cadence.
	envelope := 0.5 * (1 - math.Cos(s.envelopePhase))
	value := math.Sin(s.phase) * envelope * params.VoiceGain

	s.phase += 2 * math.Pi * s.carrierHz / float64(sampleRate)
	s.envelopePhase += 2 * math.Pi * params.SyllableHz / float64(sampleRate)
	if s.phase > 2*math.Pi {
		s.phase -= 2 * math.Pi
	}
	if s.envelopePhase > 2*math.Pi {
		s.envelopePhase -= 2 * math.Pi
	}

	return value
}

// pitchOffset derives a stable per-speaker carrier offset so distinct agents
// sound distinct across runs and processes.
func pitchOffset(agentID string, spreadHz float64) float64 {
	if spreadHz <= 0 {
		return 0
	}

	digest := fnv.New32a()
	_, _ = digest.Write([]byte(trimLower(agentID)))
	return float64(digest.Sum32()%1000) / 999 * spreadHz
}

func trimLower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
