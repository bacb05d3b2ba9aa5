package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/ircbot/errors"
)

// WebSocket dials servers reached through a websocket gateway. Each websocket
// message carries one protocol line; the adapter re-frames them as the CRLF
// stream the connection loop expects.
type WebSocket struct {
	// Header is sent with the upgrade request, for gateways that need
	// Origin or auth headers
	Header http.Header
	// TLSConfig applies to wss addresses
	TLSConfig        *tls.Config
	HandshakeTimeout time.Duration
}

// Dial connects to a ws:// or wss:// URL
func (d *WebSocket) Dial(ctx context.Context, addr string) (net.Conn, error) {
	if !strings.HasPrefix(addr, "ws://") && !strings.HasPrefix(addr, "wss://") {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "transport", "ws-dial", "address "+addr+" is not a websocket URL")
	}
	dialer := websocket.Dialer{
		TLSClientConfig:  d.TLSConfig,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	ws, _, err := dialer.DialContext(ctx, addr, d.Header)
	if err != nil {
		return nil, errors.WrapTransient(err, "transport", "ws-dial", "dial "+addr)
	}
	return &wsConn{ws: ws}, nil
}

// wsConn adapts a message-framed websocket to the net.Conn byte stream used
// by the connection loop. Reads surface each inbound message with a CRLF
// appended; writes buffer until CRLF and send complete lines as text
// messages.
type wsConn struct {
	ws *websocket.Conn

	readMu  sync.Mutex
	pending []byte

	writeMu  sync.Mutex
	writeBuf []byte
}

func (c *wsConn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for len(c.pending) == 0 {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return 0, err
		}
		msg = []byte(strings.TrimRight(string(msg), "\r\n"))
		c.pending = append(msg, '\r', '\n')
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.writeBuf = append(c.writeBuf, p...)
	for {
		idx := strings.Index(string(c.writeBuf), "\n")
		if idx < 0 {
			return len(p), nil
		}
		line := strings.TrimRight(string(c.writeBuf[:idx]), "\r")
		c.writeBuf = c.writeBuf[idx+1:]
		if err := c.ws.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return len(p), err
		}
	}
}

func (c *wsConn) Close() error {
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.ws.Close()
}

func (c *wsConn) LocalAddr() net.Addr  { return c.ws.LocalAddr() }
func (c *wsConn) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}

func (c *wsConn) SetReadDeadline(t time.Time) error  { return c.ws.SetReadDeadline(t) }
func (c *wsConn) SetWriteDeadline(t time.Time) error { return c.ws.SetWriteDeadline(t) }
