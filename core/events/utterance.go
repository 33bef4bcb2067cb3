package events

import "time"

const (
	// KindAgentUtterance identifies a full spoken line from a participant.
	KindAgentUtterance Kind = "agent_utterance"
	// KindAgentUtteranceChunk identifies an append-only fragment of the
	// in-progress line.
	KindAgentUtteranceChunk Kind = "agent_utterance_chunk"
)

// AudioMode says how an utterance's pre-rendered audio should be located.
type AudioMode string

const (
	// AudioModeFile points at a local audio file.
	AudioModeFile AudioMode = "file"
	// AudioModeRes points at a clip registered in-process.
	AudioModeRes AudioMode = "res"
	// AudioModeURL points at a fetchable audio resource.
	AudioModeURL AudioMode = "url"
	// AudioModeSynthetic explicitly requests procedural voice synthesis,
	// optionally with a duration hint.
	AudioModeSynthetic AudioMode = "synthetic"
)

// AudioRef locates the audio for an utterance. A nil reference, a synthetic
// mode, or a reference that fails to resolve all lead to procedural synthesis.
type AudioRef struct {
	Mode AudioMode
	Path string
	URL  string
	// Duration is the producer's duration estimate; zero when unknown.
	Duration time.Duration
}

// AgentUtterance announces a participant speaking a complete line.
type AgentUtterance struct {
	Base
	ConversationID string
	TurnID         string
	AgentID        string
	AgentName      string
	Text           string
	Tone           string
	Audio          *AudioRef
}

func (u AgentUtterance) String() string {
	return u.Text
}

// NewAgentUtterance creates an agent utterance event.
func NewAgentUtterance(agentID, text string) AgentUtterance {
	return AgentUtterance{Base: NewBase(KindAgentUtterance), AgentID: agentID, Text: text}
}

// AgentUtteranceChunk carries an append-only fragment of the in-progress line.
type AgentUtteranceChunk struct {
	Base
	Fragment string
}

// NewAgentUtteranceChunk creates an utterance chunk event.
func NewAgentUtteranceChunk(fragment string) AgentUtteranceChunk {
	return AgentUtteranceChunk{Base: NewBase(KindAgentUtteranceChunk), Fragment: fragment}
}
