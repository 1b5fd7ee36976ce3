// Package transport owns one live websocket connection to the relay.
//
// Framing is one JSON envelope per text frame. Liveness uses websocket
// control-frame ping/pong, independent of the envelope format. The
// credential travels as a bearer Authorization header on the handshake.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/huberdf/clipdrift/internal/envelope"
)

const (
	// DefaultPath is the relay endpoint clients attach to.
	DefaultPath = "/ws/client"

	// MaxFrameSize is the largest inbound frame we will read (16 MiB).
	MaxFrameSize = 16 * 1024 * 1024

	writeWait               = 10 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	defaultPongWait         = 10 * time.Second
)

// ErrPongTimeout is returned by Ping when no pong arrives in time. The
// engine treats it like any other session failure: tear down, backoff,
// reconnect.
var ErrPongTimeout = errors.New("pong timeout")

// ConnectError wraps a failed connection attempt (dial, handshake rejection,
// timeout). It exists so callers can tell connect-time failures apart from
// mid-session ones.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ProtocolError marks a malformed inbound frame. Receivers log and skip it;
// it never ends the session.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("protocol: %v", e.Err) }
func (e *ProtocolError) Unwrap() error { return e.Err }

// Dialer holds everything needed to attempt one connection to the relay.
type Dialer struct {
	// URL is the full websocket endpoint, e.g. ws://host:8000/ws/client.
	URL string
	// Credential is attached as "Authorization: Bearer <credential>".
	// Empty means no auth header.
	Credential string

	HandshakeTimeout time.Duration
	// PongWait bounds how long Ping waits for an acknowledgment.
	PongWait time.Duration
}

// Dial attempts one connection. Failures are wrapped in *ConnectError.
func (d Dialer) Dial(ctx context.Context) (*Session, error) {
	hdr := http.Header{}
	if d.Credential != "" {
		hdr.Set("Authorization", "Bearer "+d.Credential)
	}

	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}
	wd := websocket.Dialer{HandshakeTimeout: timeout}

	conn, resp, err := wd.DialContext(ctx, d.URL, hdr)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, &ConnectError{Endpoint: d.URL, Err: err}
	}

	pongWait := d.PongWait
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	return newSession(conn, pongWait), nil
}

// Session is one live bidirectional connection. Send, Receive and Ping may
// be used from different goroutines; there must be at most one concurrent
// Receive caller (websocket connections support a single reader).
type Session struct {
	conn     *websocket.Conn
	pongWait time.Duration

	writeMu sync.Mutex
	pongCh  chan struct{}

	closeOnce sync.Once
}

func newSession(conn *websocket.Conn, pongWait time.Duration) *Session {
	s := &Session{
		conn:     conn,
		pongWait: pongWait,
		pongCh:   make(chan struct{}, 1),
	}
	conn.SetReadLimit(MaxFrameSize)
	conn.SetPongHandler(func(string) error {
		select {
		case s.pongCh <- struct{}{}:
		default:
		}
		return nil
	})
	return s
}

// Send serialises the envelope and transmits it as one text frame. Safe for
// use concurrently with Ping; data-frame writes are serialised internally.
func (s *Session) Send(msg *envelope.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("send encode: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Receive blocks for the next inbound frame. A malformed payload yields a
// *ProtocolError and leaves the session usable; any other error is terminal
// (connection closed or broken).
func (s *Session) Receive() (*envelope.Message, error) {
	_, raw, err := s.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	msg, err := envelope.Decode(raw)
	if err != nil {
		return nil, &ProtocolError{Err: err}
	}
	return msg, nil
}

// Ping sends a control-frame ping and waits up to the configured pong wait
// for the acknowledgment. Pongs are only observed while a Receive call is in
// flight, which holds for the engine's receiver task.
func (s *Session) Ping(ctx context.Context) error {
	// Drop any pong left over from a previous probe.
	select {
	case <-s.pongCh:
	default:
	}

	deadline := time.Now().Add(s.pongWait)
	if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-s.pongCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrPongTimeout
	}
}

// Close is idempotent. A best-effort close frame is sent so the relay sees a
// clean shutdown; afterwards all pending operations on the session fail.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = s.conn.Close()
	})
	return nil
}
