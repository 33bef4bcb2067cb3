package audio

import "time"

// SynthParams are the opaque synthesis parameters supplied by the theme/style
// provider. Zero values are replaced by [DefaultSynthParams] fields only when
// the whole struct is left unset; callers passing WithSynthParams own every
// field.
type SynthParams struct {
	// Ambient bed.
	AmbientBaseHz        float64
	AmbientWobbleHz      float64
	AmbientWobbleDepthHz float64
	AmbientGain          float64
	DuckAmount           float64
	Attack               time.Duration
	Release              time.Duration

	// Synthetic voice.
	VoiceBaseHz          float64
	VoicePitchSpreadHz   float64
	VoiceGain            float64
	SyllableHz           float64
	SecondsPerWord       float64
	MinUtteranceDuration time.Duration
}

func DefaultSynthParams() SynthParams {
	return SynthParams{
		AmbientBaseHz:        110,
		AmbientWobbleHz:      0.1,
		AmbientWobbleDepthHz: 6,
		AmbientGain:          0.12,
		DuckAmount:           0.08,
		Attack:               120 * time.Millisecond,
		Release:              600 * time.Millisecond,

		VoiceBaseHz:          220,
		VoicePitchSpreadHz:   140,
		VoiceGain:            0.35,
		SyllableHz:           5,
		SecondsPerWord:       0.45,
		MinUtteranceDuration: 1200 * time.Millisecond,
	}
}

type EngineOption func(*Engine)

func WithSynthParams(params SynthParams) EngineOption {
	return func(e *Engine) { e.params = params }
}

func WithEncodingInfo(encodingInfo EncodingInfo) EngineOption {
	return func(e *Engine) {
		if !encodingInfo.IsZero() {
			e.encodingInfo = encodingInfo
		}
	}
}

// WithAssetResolver wires the resolver used for file/res/url audio
// references. Without one every utterance is synthesized.
func WithAssetResolver(resolver AssetResolver) EngineOption {
	return func(e *Engine) { e.resolver = resolver }
}

// WithSink attaches a playback sink; each Advance pushes the tick's worth of
// rendered frames to it.
func WithSink(sink Sink) EngineOption {
	return func(e *Engine) { e.sink = sink }
}

// WithPitchOffset pins a per-speaker carrier offset, overriding the derived
// one. Offsets come from the style provider as opaque values.
func WithPitchOffset(agentID string, offsetHz float64) EngineOption {
	return func(e *Engine) { e.pitchOffsets[canonicalAgentID(agentID)] = offsetHz }
}

func WithUtteranceFinishedCallback(callback func(agentID string)) EngineOption {
	return func(e *Engine) { e.SetUtteranceFinishedCallback(callback) }
}
