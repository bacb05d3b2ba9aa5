// Package dcc manages direct client-to-client connections negotiated over
// IRC: chat sessions and file transfers. The manager tracks every live
// connection so shutdown can close them all even when individual closes fail.
package dcc

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/c360/ircbot/errors"
)

// Manager owns all direct connections for one bot. It is safe for concurrent
// use. Close shuts every tracked connection and leaves the manager unusable.
type Manager struct {
	logger      *slog.Logger
	dialTimeout time.Duration

	mu     sync.Mutex
	closed bool
	nextID int64
	active map[int64]io.Closer
}

// NewManager creates a direct connection manager
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default().With("component", "dcc")
	}
	return &Manager{
		logger:      logger,
		dialTimeout: 30 * time.Second,
		active:      make(map[int64]io.Closer),
	}
}

// track registers a connection for shutdown and returns its handle
func (m *Manager) track(c io.Closer) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errors.WrapMisuse(errors.ErrAlreadyShutdown, "dcc", "track", "manager is closed")
	}
	m.nextID++
	id := m.nextID
	m.active[id] = c
	return id, nil
}

// release drops a finished connection from tracking
func (m *Manager) release(id int64) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
}

// ActiveCount reports how many direct connections are currently tracked
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// OpenChat dials a peer's advertised chat listener and returns the session.
// The session stays tracked until its Close is called.
func (m *Manager) OpenChat(nick string, addr net.IP, port int) (*Chat, error) {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(addr.String(), strconv.Itoa(port)), m.dialTimeout)
	if err != nil {
		return nil, errors.WrapTransient(err, "dcc", "open-chat", "dial "+nick)
	}
	chat := &Chat{
		Nick:    nick,
		conn:    conn,
		reader:  bufio.NewReader(conn),
		manager: m,
	}
	id, err := m.track(chat)
	if err != nil {
		conn.Close()
		return nil, err
	}
	chat.id = id
	m.logger.Info("dcc chat opened", "nick", nick, "remote", conn.RemoteAddr().String())
	return chat, nil
}

// TrackTransfer registers an externally opened transfer connection so it is
// swept on shutdown. The caller keeps ownership of the payload protocol; the
// manager only guarantees the connection dies with the bot. Release the
// handle when the transfer finishes.
func (m *Manager) TrackTransfer(c io.Closer) (func(), error) {
	id, err := m.track(c)
	if err != nil {
		return nil, err
	}
	return func() { m.release(id) }, nil
}

// Close shuts down every tracked connection. Close errors on individual
// connections are logged and do not stop the sweep. Safe to call more than
// once.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	tracked := m.active
	m.active = make(map[int64]io.Closer)
	m.mu.Unlock()

	for id, c := range tracked {
		if err := c.Close(); err != nil {
			m.logger.Warn("dcc connection close failed", "id", id, "error", err)
		}
	}
}

// Chat is a live direct chat session with one peer.
type Chat struct {
	Nick string

	id      int64
	conn    net.Conn
	reader  *bufio.Reader
	manager *Manager

	closeOnce sync.Once
}

// ReadLine blocks for the peer's next chat line, stripped of the line ending
func (c *Chat) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", errors.WrapTransient(err, "dcc", "chat-read", "read from "+c.Nick)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SendLine writes one chat line to the peer
func (c *Chat) SendLine(line string) error {
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		return errors.WrapTransient(err, "dcc", "chat-send", "write to "+c.Nick)
	}
	return nil
}

// Close ends the session and releases it from the manager
func (c *Chat) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
		c.manager.release(c.id)
	})
	return err
}
