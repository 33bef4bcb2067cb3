package stage

import "strings"

// TalkState is the per-participant speech state driven by utterance dispatch
// and completion.
type TalkState int

const (
	TalkStateIdle TalkState = iota
	TalkStateTalking
)

func (s TalkState) String() string {
	switch s {
	case TalkStateIdle:
		return "idle"
	case TalkStateTalking:
		return "talking"
	}
	return "unknown"
}

// Participant is one roster entry. AgentID is the canonical (lowercased)
// identity; membership is case-insensitive.
type Participant struct {
	AgentID     string
	DisplayName string
	Style       string
	TalkState   TalkState
}

// roster is the append-only, de-duplicated participant set. It is replaced
// wholesale by a conversation start and grows implicitly when an unseen agent
// speaks.
type roster struct {
	participants []Participant
	index        map[string]int
}

func newRoster() *roster {
	return &roster{index: map[string]int{}}
}

// Replace swaps the membership for the given ordered ids, de-duplicating
// case-insensitively.
func (r *roster) Replace(agentIDs []string) {
	r.participants = r.participants[:0]
	r.index = map[string]int{}

	for _, agentID := range agentIDs {
		r.Ensure(agentID, "")
	}
}

// Ensure adds the agent if unseen and returns its canonical id. A non-empty
// display name upgrades a previously id-only entry.
func (r *roster) Ensure(agentID, displayName string) (canonical string, added bool) {
	canonical = canonicalAgentID(agentID)
	if canonical == "" {
		return "", false
	}

	if at, ok := r.index[canonical]; ok {
		if displayName != "" && r.participants[at].DisplayName == r.participants[at].AgentID {
			r.participants[at].DisplayName = displayName
		}
		return canonical, false
	}

	name := displayName
	if name == "" {
		name = canonical
	}

	r.index[canonical] = len(r.participants)
	r.participants = append(r.participants, Participant{
		AgentID:     canonical,
		DisplayName: name,
		TalkState:   TalkStateIdle,
	})

	return canonical, true
}

func (r *roster) SetTalkState(canonical string, state TalkState) (changed bool) {
	at, ok := r.index[canonical]
	if !ok || r.participants[at].TalkState == state {
		return false
	}

	r.participants[at].TalkState = state
	return true
}

// SetAllIdle returns the canonical ids whose state actually changed.
func (r *roster) SetAllIdle() []string {
	var changed []string
	for i := range r.participants {
		if r.participants[i].TalkState != TalkStateIdle {
			r.participants[i].TalkState = TalkStateIdle
			changed = append(changed, r.participants[i].AgentID)
		}
	}
	return changed
}

func (r *roster) Participants() []Participant {
	return r.participants
}

func canonicalAgentID(agentID string) string {
	return strings.ToLower(strings.TrimSpace(agentID))
}
