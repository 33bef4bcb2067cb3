package ingest

import (
	"math/rand"
	"time"

	"github.com/gorilla/websocket"
)

type clientOptions struct {
	url            string
	conversationID string

	backoff      backoff
	pingInterval time.Duration
	pingTimeout  time.Duration

	timeline *Timeline

	dial func(url string) (*websocket.Conn, error)
	rng  *rand.Rand
}

func defaultClientOptions() clientOptions {
	return clientOptions{
		backoff:      defaultBackoff(),
		pingInterval: 20 * time.Second,
		pingTimeout:  5 * time.Second,
		dial:         dialWebsocket,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type ClientOption func(*clientOptions)

// WithURL points the client at a live websocket event source.
func WithURL(url string) ClientOption {
	return func(o *clientOptions) { o.url = url }
}

// WithConversationID makes the client send a subscribe control message once
// per successful open.
func WithConversationID(conversationID string) ClientOption {
	return func(o *clientOptions) { o.conversationID = conversationID }
}

// WithTimeline puts the client in demo mode, replaying the scripted timeline
// instead of a live transport.
func WithTimeline(timeline *Timeline) ClientOption {
	return func(o *clientOptions) { o.timeline = timeline }
}

// WithBackoff tunes the reconnect schedule.
func WithBackoff(initial, max, jitter time.Duration) ClientOption {
	return func(o *clientOptions) {
		if initial > 0 {
			o.backoff.initial = initial
		}
		if max > 0 {
			o.backoff.max = max
		}
		if jitter >= 0 {
			o.backoff.jitter = jitter
		}
	}
}

// WithKeepalive tunes the liveness probe schedule.
func WithKeepalive(interval, timeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		if interval > 0 {
			o.pingInterval = interval
		}
		if timeout > 0 {
			o.pingTimeout = timeout
		}
	}
}

// WithRand pins the jitter source, mainly for deterministic tests.
func WithRand(rng *rand.Rand) ClientOption {
	return func(o *clientOptions) {
		if rng != nil {
			o.rng = rng
		}
	}
}
