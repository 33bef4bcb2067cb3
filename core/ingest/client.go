package ingest

import (
	"encoding/json"
	"time"

	"github.com/koscakluka/stage-core/core/events"
)

// ConnectionState tracks the upstream link. Disconnected never transitions
// straight to Open; every connection passes through Connecting.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Open
	Reconnecting
	Closed
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Reconnecting:
		return "reconnecting"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Client delivers conversation events in strict receipt order, hiding
// reconnection and playback-mode differences from its consumer.
//
// All methods are driven by one tick loop; the only other goroutines are the
// dialer and the websocket reader, each handing results back over
// single-consumer channels drained by Pump.
type Client struct {
	options clientOptions

	state   ConnectionState
	attempt int

	dialing     bool
	dialResults chan dialOutcome
	session     *wsSession

	retryPending bool
	retryIn      time.Duration

	sinceInbound time.Duration
	pingPending  bool
	pingWaited   time.Duration

	demo *demoPlayback

	// pending holds injected events and staged seek replays, delivered ahead
	// of transport events on the next Pump.
	pending []events.Event
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		options:     defaultClientOptions(),
		dialResults: make(chan dialOutcome, 1),
	}

	for _, opt := range opts {
		opt(&client.options)
	}

	if client.options.timeline != nil {
		client.demo = &demoPlayback{timeline: client.options.timeline}
	}

	return client
}

func (c *Client) State() ConnectionState {
	if c == nil {
		return Closed
	}

	return c.state
}

// Connect starts connecting. Safe to call repeatedly and with no transport
// configured.
func (c *Client) Connect() {
	if c == nil || c.state != Disconnected {
		return
	}

	if c.demoMode() {
		// Demo playback opens on the next pump; the state graph still passes
		// through Connecting.
		c.setState(Connecting)
		return
	}

	if c.options.url == "" {
		logger.Warn("connect requested without an upstream url or timeline")
		return
	}

	c.setState(Connecting)
	c.beginDial()
}

// Disconnect tears the link down and leaves every timer ready for a future
// Connect. Safe to call with no prior connection.
func (c *Client) Disconnect() {
	if c == nil || c.state == Closed || c.state == Disconnected {
		return
	}

	c.closeSession()
	c.attempt = 0
	c.retryPending = false
	c.resetKeepalive()
	c.setState(Disconnected)
}

// Close permanently shuts the client down.
func (c *Client) Close() {
	if c == nil || c.state == Closed {
		return
	}

	c.closeSession()
	c.retryPending = false
	c.setState(Closed)
}

// Inject delivers an event to consumers on the next Pump, bypassing the
// transport.
func (c *Client) Inject(event events.Event) {
	if c == nil || event == nil || c.state == Closed {
		return
	}

	c.pending = append(c.pending, event)
}

// Seek jumps demo playback to progress ∈ [0, 1]. The reset-and-replay batch
// surfaces on the next Pump. No-op outside demo mode.
func (c *Client) Seek(progress float64) {
	if c == nil || !c.demoMode() || c.state == Closed {
		return
	}

	c.pending = append(c.pending, c.demo.seek(progress)...)
}

// SetPaused pauses or resumes demo playback. No-op outside demo mode.
func (c *Client) SetPaused(paused bool) {
	if c == nil || !c.demoMode() {
		return
	}

	c.demo.paused = paused
}

// DemoMode reports whether the client replays a scripted timeline instead of
// a live transport.
func (c *Client) DemoMode() bool {
	return c != nil && c.demoMode()
}

// Progress reports demo playback position in [0, 1]; always zero outside demo
// mode.
func (c *Client) Progress() float64 {
	if c == nil || !c.demoMode() {
		return 0
	}

	return c.demo.progress()
}

// Pump is the once-per-tick drive. It drains whatever is currently available,
// advances demo playback by the tick delta, and advances reconnect and
// keepalive timers. It never blocks; no events is the normal case.
func (c *Client) Pump(dt time.Duration) []events.Event {
	if c == nil || c.state == Closed {
		return nil
	}

	out := c.pending
	c.pending = nil

	if c.demoMode() {
		if c.state == Connecting || c.state == Reconnecting {
			c.attempt = 0
			c.setState(Open)
		}
		if c.state == Open {
			out = append(out, c.demo.advance(dt)...)
		}
		return out
	}

	c.pollDialOutcome()

	if c.session != nil {
		out = c.drainInbound(out)
	}

	c.advanceKeepalive(dt)
	c.advanceRetry(dt)

	return out
}

func (c *Client) demoMode() bool {
	return c.demo != nil
}

func (c *Client) setState(state ConnectionState) {
	if c.state == state {
		return
	}

	logger.Debug("connection state changed", "from", c.state.String(), "to", state.String())
	c.state = state
}

func (c *Client) beginDial() {
	if c.dialing {
		return
	}

	c.dialing = true
	url := c.options.url
	dial := c.options.dial
	go func() {
		conn, err := dial(url)
		c.dialResults <- dialOutcome{conn: conn, err: err}
	}()
}

func (c *Client) pollDialOutcome() {
	select {
	case outcome := <-c.dialResults:
		c.dialing = false

		if c.state != Connecting && c.state != Reconnecting {
			// Disconnected while the dial was in flight.
			if outcome.conn != nil {
				_ = outcome.conn.Close()
			}
			return
		}

		if outcome.err != nil {
			logger.Warn("connect failed", "error", outcome.err)
			c.scheduleRetry()
			return
		}

		c.adoptConnection(outcome)
	default:
	}
}

func (c *Client) adoptConnection(outcome dialOutcome) {
	c.session = newWSSession(outcome.conn)
	c.attempt = 0
	c.resetKeepalive()
	c.setState(Open)

	if c.options.conversationID != "" {
		if err := c.session.send(subscribeMessage(c.options.conversationID)); err != nil {
			logger.Warn("failed to subscribe", "error", err)
			c.forceReconnect()
		}
	}
}

func (c *Client) drainInbound(out []events.Event) []events.Event {
	for {
		select {
		case message := <-c.session.inbound:
			if message.err != nil {
				logger.Warn("connection lost", "error", message.err)
				c.forceReconnect()
				return out
			}

			c.sinceInbound = 0

			if isPong(message.payload) {
				c.pingPending = false
				continue
			}

			event, err := events.Decode(message.payload)
			if err != nil {
				logger.Warn("dropping malformed payload", "error", err)
				continue
			}

			out = append(out, event)
		default:
			return out
		}
	}
}

// advanceKeepalive probes a quiet link and forces a reconnect when the probe
// goes unanswered, catching connections that look open but no longer respond.
func (c *Client) advanceKeepalive(dt time.Duration) {
	if c.state != Open || c.session == nil {
		return
	}

	c.sinceInbound += dt

	if c.pingPending {
		c.pingWaited += dt
		if c.pingWaited >= c.options.pingTimeout {
			logger.Warn("keepalive timed out, forcing reconnect")
			c.forceReconnect()
		}
		return
	}

	if c.sinceInbound >= c.options.pingInterval {
		if err := c.session.send(pingMessage); err != nil {
			logger.Warn("failed to send keepalive", "error", err)
			c.forceReconnect()
			return
		}
		c.pingPending = true
		c.pingWaited = 0
	}
}

func (c *Client) advanceRetry(dt time.Duration) {
	if !c.retryPending {
		return
	}

	c.retryIn -= dt
	if c.retryIn > 0 {
		return
	}

	c.retryPending = false
	c.beginDial()
}

func (c *Client) forceReconnect() {
	c.closeSession()
	c.scheduleRetry()
}

func (c *Client) scheduleRetry() {
	c.attempt++
	c.retryIn = c.options.backoff.delay(c.attempt, c.options.rng)
	c.retryPending = true
	c.resetKeepalive()
	c.setState(Reconnecting)

	logger.Info("reconnect scheduled", "attempt", c.attempt, "delay", c.retryIn)
}

func (c *Client) closeSession() {
	if c.session == nil {
		return
	}

	c.session.close()
	c.session = nil
}

func (c *Client) resetKeepalive() {
	c.sinceInbound = 0
	c.pingPending = false
	c.pingWaited = 0
}

func isPong(payload []byte) bool {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return false
	}

	return envelope.Type == "pong"
}
