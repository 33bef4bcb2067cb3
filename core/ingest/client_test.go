package ingest

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/stage-core/core/events"
)

// eventServer is a minimal upstream: it upgrades, records inbound control
// messages, and pushes whatever payloads the test queues.
type eventServer struct {
	*httptest.Server

	conns    chan *websocket.Conn
	received chan controlMessage
}

func newEventServer(t *testing.T) *eventServer {
	t.Helper()

	server := &eventServer{
		conns:    make(chan *websocket.Conn, 4),
		received: make(chan controlMessage, 16),
	}

	upgrader := websocket.Upgrader{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		server.conns <- conn

		go func() {
			for {
				var message controlMessage
				if err := conn.ReadJSON(&message); err != nil {
					return
				}
				server.received <- message
			}
		}()
	}))
	t.Cleanup(server.Close)

	return server
}

func (s *eventServer) url() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

func (s *eventServer) awaitConn(t *testing.T) *websocket.Conn {
	t.Helper()

	select {
	case conn := <-s.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the client to connect")
		return nil
	}
}

// pumpUntil drives the client with small ticks of wall time until the
// condition holds, mimicking the host loop.
func pumpUntil(t *testing.T, client *Client, condition func([]events.Event) bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition(client.Pump(10 * time.Millisecond)) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestDemoModeOpensThroughConnecting(t *testing.T) {
	client := NewClient(WithTimeline(scriptedTimeline(2)))

	client.Connect()
	if client.State() != Connecting {
		t.Fatalf("expected Connecting after Connect, got %v", client.State())
	}

	client.Pump(0)
	if client.State() != Open {
		t.Fatalf("expected Open after the first pump, got %v", client.State())
	}
}

func TestConnectAndDisconnectAreIdempotent(t *testing.T) {
	client := NewClient(WithTimeline(scriptedTimeline(2)))

	client.Disconnect()
	client.Disconnect()
	if client.State() != Disconnected {
		t.Fatalf("expected Disconnected, got %v", client.State())
	}

	client.Connect()
	client.Connect()
	client.Pump(0)
	if client.State() != Open {
		t.Fatalf("expected Open, got %v", client.State())
	}

	client.Disconnect()
	if client.State() != Disconnected {
		t.Fatalf("expected Disconnected after teardown, got %v", client.State())
	}
}

func TestInjectBypassesTheTransport(t *testing.T) {
	client := NewClient(WithTimeline(scriptedTimeline(1)))
	client.Connect()
	client.Pump(0)

	client.Inject(events.NewThemeChanged("midnight"))
	client.Inject(events.NewAgentUtteranceChunk("frag"))

	out := client.Pump(0)
	if len(out) != 2 {
		t.Fatalf("expected both injected events, got %d", len(out))
	}
	if out[0].Kind() != events.KindThemeChanged || out[1].Kind() != events.KindAgentUtteranceChunk {
		t.Fatalf("injected events out of order: %q, %q", out[0].Kind(), out[1].Kind())
	}
}

func TestSeekIsANoOpOutsideDemoMode(t *testing.T) {
	client := NewClient(WithURL("ws://127.0.0.1:1"))

	client.Seek(0.5)
	client.SetPaused(true)

	if out := client.Pump(0); len(out) != 0 {
		t.Fatalf("expected no staged events, got %d", len(out))
	}
}

func TestLiveEventsArriveInReceiptOrder(t *testing.T) {
	server := newEventServer(t)
	client := NewClient(WithURL(server.url()))
	defer client.Close()

	client.Connect()
	conn := server.awaitConn(t)

	payloads := []string{
		`{"type":"conversation_started","participants":["ada","grace"]}`,
		`{"type":"agent_utterance","agent_id":"ada","text":"hello"}`,
		`{"type":"not_a_thing"}`,
		`{"type":"conversation_ended"}`,
	}
	for _, payload := range payloads {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			t.Fatalf("failed to push payload: %v", err)
		}
	}

	var collected []events.Event
	pumpUntil(t, client, func(batch []events.Event) bool {
		collected = append(collected, batch...)
		return len(collected) >= 3
	})

	expected := []events.Kind{events.KindConversationStarted, events.KindAgentUtterance, events.KindConversationEnded}
	for i, kind := range expected {
		if collected[i].Kind() != kind {
			t.Fatalf("event %d: expected %q, got %q", i, kind, collected[i].Kind())
		}
	}
	if client.State() != Open {
		t.Fatalf("expected the malformed payload to be non-fatal, state is %v", client.State())
	}
}

func TestSubscribeIsSentOncePerOpen(t *testing.T) {
	server := newEventServer(t)
	client := NewClient(WithURL(server.url()), WithConversationID("c_42"))
	defer client.Close()

	client.Connect()
	server.awaitConn(t)

	pumpUntil(t, client, func([]events.Event) bool { return client.State() == Open })

	select {
	case message := <-server.received:
		if message.Type != "subscribe" || message.ConversationID != "c_42" {
			t.Fatalf("unexpected control message: %+v", message)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the subscribe message")
	}
}

func TestKeepaliveTimeoutForcesOneReconnectCycle(t *testing.T) {
	server := newEventServer(t)
	client := NewClient(
		WithURL(server.url()),
		WithKeepalive(20*time.Second, 5*time.Second),
	)
	defer client.Close()

	client.Connect()
	server.awaitConn(t)
	pumpUntil(t, client, func([]events.Event) bool { return client.State() == Open })

	// A silent link: the probe fires at pingInterval and expires pingTimeout
	// later. All in tick time, no wall-clock waiting.
	client.Pump(20 * time.Second)
	if !client.pingPending {
		t.Fatal("expected a liveness probe after pingInterval of silence")
	}

	client.Pump(5 * time.Second)
	if client.State() != Reconnecting {
		t.Fatalf("expected Reconnecting after an unanswered probe, got %v", client.State())
	}
	if client.attempt != 1 {
		t.Fatalf("expected attempt counter 1, got %d", client.attempt)
	}
}

func TestPongAnswersTheProbe(t *testing.T) {
	server := newEventServer(t)
	client := NewClient(
		WithURL(server.url()),
		WithKeepalive(20*time.Second, 5*time.Second),
	)
	defer client.Close()

	client.Connect()
	conn := server.awaitConn(t)
	pumpUntil(t, client, func([]events.Event) bool { return client.State() == Open })

	client.Pump(20 * time.Second)
	if !client.pingPending {
		t.Fatal("expected a pending probe")
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong"}`)); err != nil {
		t.Fatalf("failed to send pong: %v", err)
	}

	pumpUntil(t, client, func([]events.Event) bool { return !client.pingPending })
	if client.State() != Open {
		t.Fatalf("expected the link to stay Open, got %v", client.State())
	}
}

func TestFailedDialSchedulesBackedOffRetries(t *testing.T) {
	dials := 0
	client := NewClient(WithURL("ws://example.invalid"), WithBackoff(time.Second, 8*time.Second, 0))
	client.options.dial = func(string) (*websocket.Conn, error) {
		dials++
		return nil, errDialRefused
	}

	client.Connect()
	pumpUntil(t, client, func([]events.Event) bool { return client.State() == Reconnecting })

	if client.attempt != 1 {
		t.Fatalf("expected attempt 1 after the first failure, got %d", client.attempt)
	}

	// The first retry is gated on one second of tick time.
	client.Pump(900 * time.Millisecond)
	if dials != 1 {
		t.Fatalf("expected no redial before the delay elapses, got %d dials", dials)
	}

	client.Pump(200 * time.Millisecond)
	pumpUntil(t, client, func([]events.Event) bool { return client.attempt == 2 })
}

func TestUnexpectedCloseRoutesIntoReconnect(t *testing.T) {
	server := newEventServer(t)
	client := NewClient(WithURL(server.url()))
	defer client.Close()

	client.Connect()
	conn := server.awaitConn(t)
	pumpUntil(t, client, func([]events.Event) bool { return client.State() == Open })

	_ = conn.Close()

	pumpUntil(t, client, func([]events.Event) bool { return client.State() == Reconnecting })
	if client.attempt != 1 {
		t.Fatalf("expected attempt counter 1, got %d", client.attempt)
	}
}

var errDialRefused = &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}
