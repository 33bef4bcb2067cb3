package events

import "testing"

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "conversation started", event: NewConversationStarted("c_1", "topic", []string{"ada"}), expected: KindConversationStarted},
		{name: "conversation ended", event: NewConversationEnded("c_1"), expected: KindConversationEnded},
		{name: "agent utterance", event: NewAgentUtterance("ada", "hello"), expected: KindAgentUtterance},
		{name: "agent utterance chunk", event: NewAgentUtteranceChunk("hel"), expected: KindAgentUtteranceChunk},
		{name: "theme changed", event: NewThemeChanged("midnight"), expected: KindThemeChanged},
		{name: "timeline reset", event: NewTimelineReset(), expected: KindTimelineReset},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestTimelineResetNeverDecodesFromWire(t *testing.T) {
	if _, err := Decode([]byte(`{"type":"timeline_reset"}`)); err == nil {
		t.Fatal("expected timeline_reset to be rejected as a wire event")
	}
}
