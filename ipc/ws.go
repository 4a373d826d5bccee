package ipc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

// WSTransport carries one envelope per websocket text message.
type WSTransport struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer
}

func NewWSTransport(conn *websocket.Conn) *WSTransport {
	conn.SetReadLimit(MaxFrame)
	return &WSTransport{conn: conn}
}

func (t *WSTransport) Read() (Envelope, error) {
	kind, msg, err := t.conn.ReadMessage()
	if err != nil {
		return Envelope{}, err
	}
	if kind != websocket.TextMessage {
		return Envelope{}, fmt.Errorf("unexpected websocket message type %d", kind)
	}
	return decodeEnvelope(msg)
}

func (t *WSTransport) Write(env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, b)
}

func (t *WSTransport) Close() error {
	t.mu.Lock()
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	t.mu.Unlock()
	return t.conn.Close()
}

// WSHandler upgrades HTTP requests and hands each websocket to serve,
// which runs for the lifetime of the connection.
func WSHandler(serve func(*Connection)) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true }, // hosts connect locally
	}
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		slog.Info("websocket connection accepted", "remote", r.RemoteAddr)
		serve(NewConnection(NewWSTransport(conn), nil))
	}
}

// DialWS connects to a websocket endpoint serving the envelope protocol.
// Used by tests and tooling that play the host side.
func DialWS(url string) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewWSTransport(conn), nil
}
