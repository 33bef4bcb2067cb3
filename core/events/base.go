package events

import "time"

// Kind is the wire-level event discriminator.
type Kind string

// Event is implemented by every conversation event variant. Exactly one
// concrete variant exists per wire message.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the fields shared by all event variants.
type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
