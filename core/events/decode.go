package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireMessage is the flattened wire representation of every event variant.
// Exactly one variant's fields are populated per message; the rest stay zero.
type wireMessage struct {
	Type           string     `json:"type" jsonschema:"title=Type,enum=conversation_started,enum=agent_utterance,enum=agent_utterance_chunk,enum=theme_changed,enum=conversation_ended"`
	ConversationID string     `json:"conversation_id,omitempty"`
	Topic          string     `json:"topic,omitempty"`
	Participants   []string   `json:"participants,omitempty"`
	TurnID         string     `json:"turn_id,omitempty"`
	AgentID        string     `json:"agent_id,omitempty"`
	AgentName      string     `json:"agent_name,omitempty"`
	Text           string     `json:"text,omitempty"`
	TextFragment   string     `json:"text_fragment,omitempty"`
	Tone           string     `json:"tone,omitempty"`
	Audio          *wireAudio `json:"audio,omitempty"`
	ThemeID        string     `json:"theme_id,omitempty"`
}

type wireAudio struct {
	Mode       string `json:"mode" jsonschema:"title=Mode,enum=file,enum=res,enum=url,enum=synthetic"`
	Path       string `json:"path,omitempty"`
	URL        string `json:"url,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`
}

// Decode parses a single wire message into its typed event variant.
//
// Unknown and malformed payloads return an error; callers are expected to log
// and drop them rather than fail.
func Decode(payload []byte) (Event, error) {
	var msg wireMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	switch Kind(msg.Type) {
	case KindConversationStarted:
		return NewConversationStarted(msg.ConversationID, msg.Topic, msg.Participants), nil
	case KindConversationEnded:
		return NewConversationEnded(msg.ConversationID), nil
	case KindAgentUtterance:
		utterance := NewAgentUtterance(msg.AgentID, msg.Text)
		utterance.ConversationID = msg.ConversationID
		utterance.TurnID = msg.TurnID
		utterance.AgentName = msg.AgentName
		utterance.Tone = msg.Tone
		utterance.Audio = msg.Audio.toRef()
		return utterance, nil
	case KindAgentUtteranceChunk:
		return NewAgentUtteranceChunk(msg.TextFragment), nil
	case KindThemeChanged:
		return NewThemeChanged(msg.ThemeID), nil
	case "":
		return nil, fmt.Errorf("event payload missing type")
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
}

func (a *wireAudio) toRef() *AudioRef {
	if a == nil {
		return nil
	}

	return &AudioRef{
		Mode:     AudioMode(a.Mode),
		Path:     a.Path,
		URL:      a.URL,
		Duration: time.Duration(a.DurationMS) * time.Millisecond,
	}
}
