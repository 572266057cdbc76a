package server

import (
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chatwire/chatwire/internal/protocol"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
)

// Transport carries one encoded payload per read or write, hiding how
// message boundaries are recovered. The TCP transport uses the
// length-prefix framing; the websocket transport rides the socket's own
// message frames. The engine and client loops never see the difference.
type Transport interface {
	// ReadPayload blocks until one payload is available. Returns
	// protocol.ErrConnectionClosed when the peer has gone away.
	ReadPayload() ([]byte, error)
	// WritePayload writes exactly one payload.
	WritePayload(payload []byte) error
	// Ping sends a transport-level keepalive where the transport has one.
	Ping() error
	Close() error
	RemoteAddr() string
}

type tcpTransport struct {
	conn net.Conn
}

func newTCPTransport(conn net.Conn) *tcpTransport {
	return &tcpTransport{conn: conn}
}

func (t *tcpTransport) ReadPayload() ([]byte, error) {
	return protocol.ReadFrame(t.conn)
}

func (t *tcpTransport) WritePayload(payload []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return protocol.WriteFrame(t.conn, payload)
}

// Ping is a no-op: a raw TCP stream has no keepalive frame, an idle
// connection simply blocks its reader.
func (t *tcpTransport) Ping() error {
	return nil
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

func (t *tcpTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

type wsTransport struct {
	conn *websocket.Conn
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	t := &wsTransport{conn: conn}
	conn.SetReadLimit(protocol.MaxPayloadSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	return t
}

func (t *wsTransport) ReadPayload() ([]byte, error) {
	_, payload, err := t.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			return nil, protocol.ErrConnectionClosed
		}
		return nil, &protocol.NetworkError{Op: "read message", Err: err}
	}
	if len(payload) == 0 {
		return nil, protocol.ErrInvalidMessageFormat
	}
	return payload, nil
}

func (t *wsTransport) WritePayload(payload []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := t.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return &protocol.NetworkError{Op: "write message", Err: err}
	}
	return nil
}

func (t *wsTransport) Ping() error {
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		return &protocol.NetworkError{Op: "ping", Err: err}
	}
	return nil
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

func (t *wsTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}
