package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/koscakluka/stage-core/core/events"
)

// TimelineEntry is one scripted event and the delay gating it.
type TimelineEntry struct {
	Delay time.Duration
	Event events.Event
}

// Timeline is an ordered, immutable demo script.
type Timeline struct {
	entries []TimelineEntry
}

func NewTimeline(entries ...TimelineEntry) *Timeline {
	return &Timeline{entries: entries}
}

func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}

	return len(t.entries)
}

// ParseTimeline decodes a demo timeline file: a JSON list of
// {"delay_s": number, "event": {...}} entries. Entries whose event payload is
// malformed are logged and dropped, matching the live-transport policy.
func ParseTimeline(data []byte) (*Timeline, error) {
	var raw []struct {
		DelayS float64         `json:"delay_s"`
		Event  json.RawMessage `json:"event"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeline: %w", err)
	}

	timeline := &Timeline{entries: make([]TimelineEntry, 0, len(raw))}
	for i, entry := range raw {
		event, err := events.Decode(entry.Event)
		if err != nil {
			logger.Warn("dropping malformed timeline entry", "index", i, "error", err)
			continue
		}

		timeline.entries = append(timeline.entries, TimelineEntry{
			Delay: time.Duration(entry.DelayS * float64(time.Second)),
			Event: event,
		})
	}

	return timeline, nil
}

// demoPlayback advances a timeline in tick time. Events fire one at a time,
// each gated by its recorded delay; a large tick can pass several gates.
type demoPlayback struct {
	timeline *Timeline
	cursor   int
	waited   time.Duration
	paused   bool
}

func (d *demoPlayback) advance(dt time.Duration) []events.Event {
	if d == nil || d.paused || d.timeline.Len() == 0 {
		return nil
	}

	d.waited += dt

	var out []events.Event
	for d.cursor < len(d.timeline.entries) {
		entry := d.timeline.entries[d.cursor]
		if d.waited < entry.Delay {
			break
		}

		d.waited -= entry.Delay
		out = append(out, entry.Event)
		d.cursor++
	}

	return out
}

func (d *demoPlayback) progress() float64 {
	if d == nil || d.timeline.Len() == 0 {
		return 0
	}

	return math.Min(1, float64(d.cursor)/float64(d.timeline.Len()))
}

// seek maps progress to round(p·(N−1)), emits a reset, and replays every
// event from the start through the target index. The resulting consumer state
// depends only on the target, never on the previous cursor.
func (d *demoPlayback) seek(progress float64) []events.Event {
	if d == nil || d.timeline.Len() == 0 {
		return nil
	}

	progress = math.Min(1, math.Max(0, progress))
	target := int(math.Round(progress * float64(d.timeline.Len()-1)))

	out := make([]events.Event, 0, target+2)
	out = append(out, events.NewTimelineReset())
	for _, entry := range d.timeline.entries[:target+1] {
		out = append(out, entry.Event)
	}

	d.cursor = target + 1
	d.waited = 0

	return out
}
