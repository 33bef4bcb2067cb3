package stage

import (
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/stage-core/core/events"
)

// EventSource delivers ordered conversation events; the ingest client is the
// production implementation.
type EventSource interface {
	Connect()
	Disconnect()
	Pump(dt time.Duration) []events.Event
}

// AudioEngine is the foreground-voice and ambient-bed surface the coordinator
// drives.
type AudioEngine interface {
	PlayUtterance(agentID string, ref *events.AudioRef, text string, durationHint time.Duration)
	StopVoice()
	Advance(dt time.Duration)
	SetUtteranceFinishedCallback(func(agentID string))
}

// Coordinator translates conversation events and audio completion signals
// into roster membership, per-participant talk state, and the single active
// speaker marker consumed by the renderer.
//
// Everything is owned by the tick loop calling Update; no locking.
type Coordinator struct {
	source EventSource
	engine AudioEngine

	roster         *roster
	fallbackRoster []string

	// activeSpeaker highlights ahead of audio completion: set on every
	// utterance, cleared only by conversation end or the next utterance.
	activeSpeaker string
	line          string
	themeID       string
	ended         bool

	callbacks coordinatorCallbacks
}

// View is a point-in-time, render-facing snapshot.
type View struct {
	Roster        []Participant
	ActiveSpeaker string
	Line          string
	ThemeID       string
	Ended         bool
}

func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	coordinator := &Coordinator{
		roster:    newRoster(),
		callbacks: noopCoordinatorCallbacks(),
	}

	for _, opt := range opts {
		opt(coordinator)
	}

	if coordinator.engine != nil {
		coordinator.engine.SetUtteranceFinishedCallback(coordinator.handleUtteranceFinished)
	}

	return coordinator
}

// Start begins event delivery. Safe to call with no source configured.
func (c *Coordinator) Start() {
	if c == nil || c.source == nil {
		return
	}

	c.source.Connect()
}

// Close stops audio and event delivery. Safe to call at any time.
func (c *Coordinator) Close() {
	if c == nil {
		return
	}

	if c.engine != nil {
		c.engine.StopVoice()
	}
	if c.source != nil {
		c.source.Disconnect()
	}
}

// Update is the once-per-tick drive: pump the source, advance audio, then
// apply the pumped events.
func (c *Coordinator) Update(dt time.Duration) {
	if c == nil {
		return
	}

	var batch []events.Event
	if c.source != nil {
		batch = c.source.Pump(dt)
	}

	if c.engine != nil {
		c.engine.Advance(dt)
	}

	for _, event := range batch {
		c.apply(event)
	}
}

// Apply feeds a single event through the coordinator outside the source
// path, for externally driven updates.
func (c *Coordinator) Apply(event events.Event) {
	if c == nil || event == nil {
		return
	}

	c.apply(event)
}

func (c *Coordinator) apply(event events.Event) {
	switch event := event.(type) {
	case events.ConversationStarted:
		c.handleConversationStarted(event)
	case events.AgentUtterance:
		c.handleUtterance(event)
	case events.AgentUtteranceChunk:
		if event.Fragment == "" {
			return
		}
		c.setLine(c.line + event.Fragment)
	case events.ThemeChanged:
		// Re-applying the same theme is safe; styling is idempotent.
		c.themeID = event.ThemeID
		c.callbacks.onThemeChanged(event.ThemeID)
	case events.ConversationEnded:
		c.handleConversationEnded()
	case events.TimelineReset:
		c.reset()
	default:
		logger.Warn("dropping unhandled event", "kind", string(event.Kind()))
	}
}

func (c *Coordinator) handleConversationStarted(event events.ConversationStarted) {
	participants := event.Participants
	if len(participants) == 0 {
		participants = c.fallbackRoster
	}

	c.roster.Replace(participants)
	c.ended = false
	c.setActiveSpeaker("")
	c.setLine("")
	c.callbacks.onRosterChanged(c.roster.Participants())
}

func (c *Coordinator) handleUtterance(event events.AgentUtterance) {
	if strings.TrimSpace(event.Text) == "" {
		return
	}

	canonical, added := c.roster.Ensure(event.AgentID, event.AgentName)
	if canonical == "" {
		logger.Warn("dropping utterance without an agent id")
		return
	}
	if added {
		c.callbacks.onRosterChanged(c.roster.Participants())
	}

	c.ended = false

	if c.roster.SetTalkState(canonical, TalkStateTalking) {
		c.callbacks.onTalkStateChanged(canonical, TalkStateTalking)
	}
	c.setActiveSpeaker(canonical)
	c.setLine(event.Text)

	if c.engine != nil {
		c.engine.PlayUtterance(canonical, event.Audio, event.Text, 0)
	}
}

func (c *Coordinator) handleConversationEnded() {
	if c.ended {
		return
	}

	c.ended = true
	if c.engine != nil {
		c.engine.StopVoice()
	}
	for _, canonical := range c.roster.SetAllIdle() {
		c.callbacks.onTalkStateChanged(canonical, TalkStateIdle)
	}
	c.setActiveSpeaker("")
}

// handleUtteranceFinished is the audio engine's natural-completion signal.
// It only returns the speaker to idle; the active-speaker marker is
// independent of audio completion.
func (c *Coordinator) handleUtteranceFinished(agentID string) {
	if c == nil {
		return
	}

	canonical := canonicalAgentID(agentID)
	if c.roster.SetTalkState(canonical, TalkStateIdle) {
		c.callbacks.onTalkStateChanged(canonical, TalkStateIdle)
	}
}

// reset drops all conversation-derived state ahead of a deterministic replay.
func (c *Coordinator) reset() {
	if c.engine != nil {
		c.engine.StopVoice()
	}

	c.roster = newRoster()
	c.ended = false
	c.setActiveSpeaker("")
	c.setLine("")
	if c.themeID != "" {
		c.themeID = ""
		c.callbacks.onThemeChanged("")
	}
	c.callbacks.onRosterChanged(c.roster.Participants())
}

func (c *Coordinator) setActiveSpeaker(canonical string) {
	if c.activeSpeaker == canonical {
		return
	}

	c.activeSpeaker = canonical
	c.callbacks.onActiveSpeakerChanged(canonical)
}

func (c *Coordinator) setLine(line string) {
	if c.line == line {
		return
	}

	c.line = line
	c.callbacks.onLineUpdated(line)
}

// ActiveSpeaker reports the canonical id of the highlighted speaker, empty
// when none.
func (c *Coordinator) ActiveSpeaker() string {
	if c == nil {
		return ""
	}

	return c.activeSpeaker
}

// Snapshot returns a deep copy of render-facing state so the consumer never
// aliases live roster entries.
func (c *Coordinator) Snapshot() View {
	if c == nil {
		return View{}
	}

	view := View{
		ActiveSpeaker: c.activeSpeaker,
		Line:          c.line,
		ThemeID:       c.themeID,
		Ended:         c.ended,
	}
	_ = copier.Copy(&view.Roster, c.roster.Participants())

	return view
}
