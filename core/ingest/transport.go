package ingest

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// inboundQueueCapacity bounds the single-producer/single-consumer handoff
// between the reader goroutine and Pump.
const inboundQueueCapacity = 256

type dialOutcome struct {
	conn *websocket.Conn
	err  error
}

type inboundMessage struct {
	payload []byte
	err     error
}

// wsSession owns one live websocket connection. The reader goroutine is its
// only producer and Pump its only consumer; nothing else touches the
// connection's read side.
type wsSession struct {
	conn    *websocket.Conn
	inbound chan inboundMessage

	done      chan struct{}
	closeOnce sync.Once
}

func newWSSession(conn *websocket.Conn) *wsSession {
	session := &wsSession{
		conn:    conn,
		inbound: make(chan inboundMessage, inboundQueueCapacity),
		done:    make(chan struct{}),
	}

	go session.readLoop()

	return session
}

func (s *wsSession) readLoop() {
	for {
		_, payload, err := s.conn.ReadMessage()

		message := inboundMessage{payload: payload, err: err}
		select {
		case s.inbound <- message:
		case <-s.done:
			return
		}

		if err != nil {
			return
		}
	}
}

// send writes a control message. Pump is the only writer, satisfying the
// websocket single-writer constraint.
func (s *wsSession) send(message any) error {
	if s == nil || s.conn == nil {
		return fmt.Errorf("no open connection")
	}

	if err := s.conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}

func (s *wsSession) close() {
	if s == nil {
		return
	}

	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func dialWebsocket(url string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection: %w", err)
	}

	return conn, nil
}

// controlMessage covers every outbound message this client emits.
type controlMessage struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

func subscribeMessage(conversationID string) controlMessage {
	return controlMessage{Type: "subscribe", ConversationID: conversationID}
}

var pingMessage = controlMessage{Type: "ping"}
