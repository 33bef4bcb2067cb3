package ingest

import (
	"fmt"
	"testing"
	"time"

	"github.com/koscakluka/stage-core/core/events"
)

func scriptedTimeline(count int) *Timeline {
	entries := make([]TimelineEntry, 0, count)
	for i := range count {
		entries = append(entries, TimelineEntry{
			Delay: time.Second,
			Event: events.NewAgentUtterance("ada", fmt.Sprintf("line %d", i)),
		})
	}
	return NewTimeline(entries...)
}

func TestParseTimelineDropsMalformedEntries(t *testing.T) {
	payload := []byte(`[
		{"delay_s": 0.5, "event": {"type": "conversation_started", "participants": ["ada"]}},
		{"delay_s": 1, "event": {"type": "dance_party"}},
		{"delay_s": 2, "event": {"type": "conversation_ended"}}
	]`)

	timeline, err := ParseTimeline(payload)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if timeline.Len() != 2 {
		t.Fatalf("expected 2 valid entries, got %d", timeline.Len())
	}
	if timeline.entries[0].Delay != 500*time.Millisecond {
		t.Fatalf("expected 0.5s delay, got %v", timeline.entries[0].Delay)
	}
}

func TestParseTimelineRejectsNonListPayloads(t *testing.T) {
	if _, err := ParseTimeline([]byte(`{"delay_s": 1}`)); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestAdvanceGatesEventsByRecordedDelay(t *testing.T) {
	playback := &demoPlayback{timeline: scriptedTimeline(3)}

	if fired := playback.advance(900 * time.Millisecond); len(fired) != 0 {
		t.Fatalf("expected no events before the first delay, got %d", len(fired))
	}
	if fired := playback.advance(100 * time.Millisecond); len(fired) != 1 {
		t.Fatalf("expected the first event at 1s, got %d", len(fired))
	}
	if fired := playback.advance(2 * time.Second); len(fired) != 2 {
		t.Fatalf("expected a large tick to pass both remaining gates, got %d", len(fired))
	}
	if fired := playback.advance(time.Hour); len(fired) != 0 {
		t.Fatalf("expected no events past the end, got %d", len(fired))
	}
}

func TestAdvanceDoesNothingWhilePaused(t *testing.T) {
	playback := &demoPlayback{timeline: scriptedTimeline(3), paused: true}

	if fired := playback.advance(time.Minute); fired != nil {
		t.Fatalf("expected paused playback to emit nothing, got %d events", len(fired))
	}
}

func TestSeekReplaysFromStartThroughTarget(t *testing.T) {
	playback := &demoPlayback{timeline: scriptedTimeline(10)}

	fired := playback.seek(0.5)

	// round(0.5·9) = 5, so a reset plus events[0..5].
	if len(fired) != 7 {
		t.Fatalf("expected reset + 6 events, got %d", len(fired))
	}
	if _, ok := fired[0].(events.TimelineReset); !ok {
		t.Fatalf("expected the batch to open with a reset, got %T", fired[0])
	}
	if playback.cursor != 6 {
		t.Fatalf("expected cursor at 6, got %d", playback.cursor)
	}
}

func TestSeekIsIdempotentRegardlessOfPriorCursor(t *testing.T) {
	fresh := &demoPlayback{timeline: scriptedTimeline(10)}
	wandered := &demoPlayback{timeline: scriptedTimeline(10)}
	wandered.advance(3 * time.Second)
	wandered.seek(0.9)

	expected := fresh.seek(0.5)
	got := wandered.seek(0.5)

	if len(expected) != len(got) {
		t.Fatalf("expected %d events, got %d", len(expected), len(got))
	}
	for i := range expected {
		if expected[i].Kind() != got[i].Kind() {
			t.Fatalf("event %d kind mismatch: %q vs %q", i, expected[i].Kind(), got[i].Kind())
		}
	}
	if fresh.cursor != wandered.cursor {
		t.Fatalf("cursor mismatch: %d vs %d", fresh.cursor, wandered.cursor)
	}
}

func TestSeekClampsOutOfRangeProgress(t *testing.T) {
	playback := &demoPlayback{timeline: scriptedTimeline(4)}

	if fired := playback.seek(7); len(fired) != 5 {
		t.Fatalf("expected clamp to the last index, got %d events", len(fired))
	}
	if fired := playback.seek(-3); len(fired) != 2 {
		t.Fatalf("expected clamp to the first index, got %d events", len(fired))
	}
}

func TestSeekOnEmptyTimelineIsANoOp(t *testing.T) {
	playback := &demoPlayback{timeline: NewTimeline()}

	if fired := playback.seek(0.5); fired != nil {
		t.Fatalf("expected no events, got %d", len(fired))
	}
}
