package ipc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Transport moves whole envelopes. The unix socket uses length-prefixed
// frames; the websocket sends one envelope per text message.
type Transport interface {
	Read() (Envelope, error)
	Write(env Envelope) error
	Close() error
}

// StreamTransport frames envelopes over a byte stream such as a unix socket.
type StreamTransport struct {
	rw io.ReadWriteCloser
	mu sync.Mutex // serializes writes
}

func NewStreamTransport(rw io.ReadWriteCloser) *StreamTransport {
	return &StreamTransport{rw: rw}
}

func (t *StreamTransport) Read() (Envelope, error) { return ReadEnvelope(t.rw) }

func (t *StreamTransport) Write(env Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return WriteEnvelope(t.rw, env)
}

func (t *StreamTransport) Close() error { return t.rw.Close() }

// Connection represents a single host simulation talking to the core.
// Each team gets its own connection, identified after the hello handshake.
type Connection struct {
	transport Transport
	handlers  map[string]Handler
	validator *Validator
	Team      string
}

func NewConnection(t Transport, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		transport: t,
		handlers:  handlers,
	}
}

// NewSocketConnection wraps an accepted unix socket connection.
func NewSocketConnection(conn net.Conn, handlers map[string]Handler) *Connection {
	return NewConnection(NewStreamTransport(conn), handlers)
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

// SetValidator makes the read loop check every inbound payload before
// dispatching it.
func (c *Connection) SetValidator(v *Validator) {
	c.validator = v
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.transport.Write(env)
}

// ReadLoop blocks until the connection closes or errors. It owns the transport
// lifetime so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.transport.Close()

	for {
		env, err := c.transport.Read()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				slog.Info("connection closed", "team", c.Team)
			} else {
				slog.Info("connection read ended", "team", c.Team, "error", err)
			}
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			continue
		}

		if c.validator != nil {
			if err := c.validator.Validate(env); err != nil {
				slog.Warn("rejected invalid message", "type", env.Type, "error", err)
				if !c.reply(errorEnvelope(err)) {
					return
				}
				continue
			}
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "error", err)
			if !c.reply(errorEnvelope(err)) {
				return
			}
			continue
		}

		if resp != nil {
			if !c.reply(*resp) {
				return
			}
			slog.Debug("sent response", "type", resp.Type, "team", c.Team)
		}
	}
}

// reply reports whether the connection is still usable.
func (c *Connection) reply(env Envelope) bool {
	if err := c.transport.Write(env); err != nil {
		slog.Error("failed to send response", "type", env.Type, "error", err)
		return false
	}
	return true
}

func errorEnvelope(cause error) Envelope {
	env, err := NewEnvelope(TypeError, ErrorMessage{Error: cause.Error()})
	if err != nil {
		// a string always marshals
		panic(fmt.Sprintf("marshal error envelope: %v", err))
	}
	return env
}
