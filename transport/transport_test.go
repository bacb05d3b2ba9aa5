package transport

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPDialRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			return
		}
		conn.Write([]byte("PONG " + strings.TrimSpace(strings.TrimPrefix(line, "PING")) + "\r\n"))
	}()

	d := &TCP{Timeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("PING :token\r\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "PONG :token\r\n", reply)
}

func TestTCPDialCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &TCP{}
	_, err := d.Dial(ctx, "192.0.2.1:6667")
	assert.Error(t, err)
}

func TestTLSDialBadAddress(t *testing.T) {
	d := &TLS{}
	_, err := d.Dial(context.Background(), "no-port-here")
	assert.Error(t, err)
}

func TestWebSocketRejectsPlainAddress(t *testing.T) {
	d := &WebSocket{}
	_, err := d.Dial(context.Background(), "irc.example.org:6667")
	assert.Error(t, err)
}

func TestWebSocketLineFraming(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, append([]byte("echo "), msg...)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	d := &WebSocket{HandshakeTimeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer conn.Close()

	// two lines in one write turn into two messages, read back as two
	// CRLF-terminated lines
	_, err = conn.Write([]byte("NICK mybot\r\nUSER mybot 8 * :real\r\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	r := bufio.NewReader(conn)

	first, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "echo NICK mybot\r\n", first)

	second, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "echo USER mybot 8 * :real\r\n", second)
}
