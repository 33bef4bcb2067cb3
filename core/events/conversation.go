package events

const (
	// KindConversationStarted identifies the start of a conversation.
	KindConversationStarted Kind = "conversation_started"
	// KindConversationEnded identifies the end of a conversation.
	KindConversationEnded Kind = "conversation_ended"
	// KindTimelineReset identifies a synthetic reset emitted before a demo
	// seek replay. It never appears on the wire.
	KindTimelineReset Kind = "timeline_reset"
)

// ConversationStarted announces a new conversation and its full roster.
// Participants are ordered as delivered and replace any previous roster.
type ConversationStarted struct {
	Base
	ConversationID string
	Topic          string
	Participants   []string
}

// NewConversationStarted creates a conversation started event.
func NewConversationStarted(conversationID, topic string, participants []string) ConversationStarted {
	return ConversationStarted{
		Base:           NewBase(KindConversationStarted),
		ConversationID: conversationID,
		Topic:          topic,
		Participants:   participants,
	}
}

// ConversationEnded marks the end of the current conversation.
type ConversationEnded struct {
	Base
	ConversationID string
}

// NewConversationEnded creates a conversation ended event.
func NewConversationEnded(conversationID string) ConversationEnded {
	return ConversationEnded{Base: NewBase(KindConversationEnded), ConversationID: conversationID}
}

// TimelineReset instructs consumers to drop all conversation-derived state
// before a deterministic replay.
type TimelineReset struct{ Base }

// NewTimelineReset creates a timeline reset event.
func NewTimelineReset() TimelineReset {
	return TimelineReset{Base: NewBase(KindTimelineReset)}
}
