package audio

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/stage-core/core/events"
)

// Engine produces the ambient bed and at most one foreground voice stream,
// synthesizing voice procedurally when an utterance carries no playable asset.
//
// All methods are expected to be called from the single tick-driven loop; the
// engine holds no locks.
type Engine struct {
	encodingInfo EncodingInfo
	params       SynthParams

	resolver AssetResolver
	sink     Sink

	ambient ambientBed
	voice   *voiceSession

	pitchOffsets map[string]float64

	onUtteranceFinished func(agentID string)

	// frameDebt carries the fractional frame remainder between ticks so the
	// pushed sample count matches wall time over many ticks.
	frameDebt float64
}

// Clip is decoded PCM audio ready for verbatim playback.
type Clip struct {
	PCM        []int16
	SampleRate int
}

func (c Clip) PlayDuration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.PCM)) / float64(c.SampleRate) * float64(time.Second))
}

// AssetResolver turns an utterance audio reference into a playable clip.
type AssetResolver interface {
	Resolve(ref events.AudioRef) (Clip, error)
}

// Sink receives rendered sample frames. It matches the output client surface
// used by the playback devices in this module.
type Sink interface {
	EncodingInfo() EncodingInfo
	SendAudio(audio []byte) error
	ClearBuffer()
}

func NewEngine(opts ...EngineOption) *Engine {
	engine := &Engine{
		encodingInfo:        GetDefaultEncodingInfo(),
		params:              DefaultSynthParams(),
		pitchOffsets:        map[string]float64{},
		onUtteranceFinished: func(string) {},
	}

	for _, opt := range opts {
		opt(engine)
	}

	engine.ambient = newAmbientBed(engine.params.AmbientGain)

	return engine
}

// SetUtteranceFinishedCallback registers the natural-completion signal.
// Pre-empted sessions never trigger it.
func (e *Engine) SetUtteranceFinishedCallback(callback func(agentID string)) {
	if e == nil {
		return
	}

	if callback != nil {
		e.onUtteranceFinished = callback
	}
}

// PlayUtterance starts the foreground voice for an utterance.
//
// An active session is stopped immediately without its completion signal.
// If ref resolves to a playable clip it is played verbatim; otherwise a
// synthetic voice runs for max(minDuration, hint ?? wordCount·secondsPerWord).
// A missing or unresolvable asset is a fallback, never a failure.
func (e *Engine) PlayUtterance(agentID string, ref *events.AudioRef, text string, durationHint time.Duration) {
	if e == nil {
		return
	}

	e.preemptVoice()

	session := &voiceSession{
		id:        uuid.NewString(),
		agentID:   agentID,
		carrierHz: e.params.VoiceBaseHz + e.agentPitchOffset(agentID),
	}

	if clip, ok := e.resolveClip(ref); ok {
		session.clip = &clip
		session.clipStep = float64(clip.SampleRate) / float64(e.encodingInfo.SampleRate)
		session.duration = clip.PlayDuration()
	} else {
		hint := durationHint
		if hint <= 0 && ref != nil {
			hint = ref.Duration
		}
		if hint <= 0 {
			hint = time.Duration(float64(wordCount(text)) * e.params.SecondsPerWord * float64(time.Second))
		}
		session.duration = maxDuration(e.params.MinUtteranceDuration, hint)
	}

	e.voice = session
	e.ambient.targetGain = math.Max(0, e.params.AmbientGain-e.params.DuckAmount)

	logger.Debug("voice session started",
		"session_id", session.id,
		"agent_id", agentID,
		"synthetic", session.clip == nil,
		"duration", session.duration,
	)
}

func (e *Engine) resolveClip(ref *events.AudioRef) (Clip, bool) {
	if ref == nil || ref.Mode == events.AudioModeSynthetic || e.resolver == nil {
		return Clip{}, false
	}

	clip, err := e.resolver.Resolve(*ref)
	if err != nil {
		logger.Warn("falling back to synthetic voice", "mode", string(ref.Mode), "error", err)
		return Clip{}, false
	}
	if len(clip.PCM) == 0 || clip.SampleRate <= 0 {
		return Clip{}, false
	}

	return clip, true
}

// StopVoice hard-stops the active session, if any, without its completion
// signal and releases the ambient duck. Safe to call with nothing active.
func (e *Engine) StopVoice() {
	if e == nil || e.voice == nil {
		e.releaseDuck()
		return
	}

	e.preemptVoice()
	e.releaseDuck()
}

func (e *Engine) preemptVoice() {
	if e.voice == nil {
		return
	}

	logger.Debug("voice session pre-empted", "session_id", e.voice.id, "agent_id", e.voice.agentID)
	e.voice = nil
	// Hard stop: partially-issued frames are flushed rather than drained.
	if e.sink != nil {
		e.sink.ClearBuffer()
	}
}

func (e *Engine) releaseDuck() {
	if e == nil {
		return
	}

	e.ambient.targetGain = e.params.AmbientGain
}

// Advance moves gain ramps and session timers forward by one tick and, when a
// sink is attached, pushes the frames that tick is worth.
func (e *Engine) Advance(dt time.Duration) {
	if e == nil || dt < 0 {
		return
	}

	e.ambient.advanceGain(dt, e.params.Attack, e.params.Release)

	// Frames render while the session is still live; a finishing session
	// emits its final partial buffer before the timer clears it.
	e.pushFrames(dt)

	if e.voice != nil {
		e.voice.elapsed += dt
		if e.voice.done() {
			finished := e.voice.agentID
			e.voice = nil
			e.releaseDuck()
			e.onUtteranceFinished(finished)
		}
	}
}

func (e *Engine) pushFrames(dt time.Duration) {
	if e.sink == nil {
		return
	}

	e.frameDebt += dt.Seconds() * float64(e.encodingInfo.SampleRate)
	frames := int(e.frameDebt)
	if frames <= 0 {
		return
	}
	e.frameDebt -= float64(frames)

	if err := e.sink.SendAudio(e.RenderLinear16(frames)); err != nil {
		logger.Warn("failed to push frames to sink", "error", err)
	}
}

// Render fills dst with the mixed ambient and voice signal. Phase accumulators
// carry over between calls; rendering zero frames does no work.
func (e *Engine) Render(dst []int16) {
	if e == nil {
		return
	}

	for i := range dst {
		value := e.ambient.sample(
			e.params.AmbientBaseHz,
			e.params.AmbientWobbleHz,
			e.params.AmbientWobbleDepthHz,
			e.encodingInfo.SampleRate,
		)
		if e.voice != nil {
			value += e.voice.sample(e.params, e.encodingInfo.SampleRate)
		}

		dst[i] = int16(clamp(value, -1, 1) * math.MaxInt16)
	}
}

// RenderLinear16 renders frames as little-endian linear16 bytes, the encoding
// the playback devices consume.
func (e *Engine) RenderLinear16(frames int) []byte {
	if e == nil || frames <= 0 {
		return nil
	}

	samples := make([]int16, frames)
	e.Render(samples)

	out := make([]byte, 2*frames)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(sample))
	}
	return out
}

// ActiveAgent reports the owner of the current voice session.
func (e *Engine) ActiveAgent() (string, bool) {
	if e == nil || e.voice == nil {
		return "", false
	}

	return e.voice.agentID, true
}

// AmbientGain reports the bed's current (ramped) gain.
func (e *Engine) AmbientGain() float64 {
	if e == nil {
		return 0
	}

	return e.ambient.currentGain
}

func (e *Engine) EncodingInfo() EncodingInfo {
	return e.encodingInfo
}

func (e *Engine) agentPitchOffset(agentID string) float64 {
	if offset, ok := e.pitchOffsets[canonicalAgentID(agentID)]; ok {
		return offset
	}

	return pitchOffset(agentID, e.params.VoicePitchSpreadHz)
}

func canonicalAgentID(agentID string) string {
	return trimLower(agentID)
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
