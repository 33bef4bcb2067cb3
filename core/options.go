package stage

type CoordinatorOption func(*Coordinator)

// WithEventSource wires the ordered event stream, live or demo.
func WithEventSource(source EventSource) CoordinatorOption {
	return func(c *Coordinator) { c.source = source }
}

// WithAudioEngine wires the audio surface utterances are dispatched to.
func WithAudioEngine(engine AudioEngine) CoordinatorOption {
	return func(c *Coordinator) { c.engine = engine }
}

// WithFallbackRoster sets the membership used when a conversation starts with
// an empty participant list.
func WithFallbackRoster(agentIDs ...string) CoordinatorOption {
	return func(c *Coordinator) { c.fallbackRoster = agentIDs }
}

type coordinatorCallbacks struct {
	onRosterChanged        func(participants []Participant)
	onTalkStateChanged     func(agentID string, state TalkState)
	onActiveSpeakerChanged func(agentID string)
	onLineUpdated          func(line string)
	onThemeChanged         func(themeID string)
}

func noopCoordinatorCallbacks() coordinatorCallbacks {
	return coordinatorCallbacks{
		onRosterChanged:        func([]Participant) {},
		onTalkStateChanged:     func(string, TalkState) {},
		onActiveSpeakerChanged: func(string) {},
		onLineUpdated:          func(string) {},
		onThemeChanged:         func(string) {},
	}
}

// WithRosterChangedCallback registers a callback for membership changes,
// including implicit additions from unseen speakers.
func WithRosterChangedCallback(callback func(participants []Participant)) CoordinatorOption {
	return func(c *Coordinator) {
		if callback != nil {
			c.callbacks.onRosterChanged = callback
		}
	}
}

// WithTalkStateChangedCallback registers a callback for Idle/Talking
// transitions.
func WithTalkStateChangedCallback(callback func(agentID string, state TalkState)) CoordinatorOption {
	return func(c *Coordinator) {
		if callback != nil {
			c.callbacks.onTalkStateChanged = callback
		}
	}
}

// WithActiveSpeakerCallback registers a callback for the single-valued
// active-speaker marker. An empty id means no speaker is highlighted.
func WithActiveSpeakerCallback(callback func(agentID string)) CoordinatorOption {
	return func(c *Coordinator) {
		if callback != nil {
			c.callbacks.onActiveSpeakerChanged = callback
		}
	}
}

// WithLineCallback registers a callback for the display line: full replaces
// on utterances, appends on chunks.
func WithLineCallback(callback func(line string)) CoordinatorOption {
	return func(c *Coordinator) {
		if callback != nil {
			c.callbacks.onLineUpdated = callback
		}
	}
}

// WithThemeChangedCallback registers a callback for theme re-application.
func WithThemeChangedCallback(callback func(themeID string)) CoordinatorOption {
	return func(c *Coordinator) {
		if callback != nil {
			c.callbacks.onThemeChanged = callback
		}
	}
}
