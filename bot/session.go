package bot

import (
	"bufio"
	"net"
	"sync"

	"github.com/c360/ircbot/dcc"
	"github.com/c360/ircbot/irc"
)

// session is the per-connection state. A fresh session is built on every
// successful connect and discarded on shutdown; reconnects never reuse the
// previous session's streams.
type session struct {
	conn   net.Conn
	reader *bufio.Reader

	writeMu sync.Mutex
	writer  *bufio.Writer

	mu       sync.Mutex
	nick     string
	loggedIn bool
	caps     []string

	parser *irc.Parser
	dcc    *dcc.Manager

	closeOnce sync.Once
}

func newSession(conn net.Conn, nick string) *session {
	return &session{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
		nick:   nick,
	}
}

func (s *session) currentNick() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nick
}

func (s *session) setNick(nick string) {
	s.mu.Lock()
	s.nick = nick
	s.mu.Unlock()
}

func (s *session) setLoggedIn() {
	s.mu.Lock()
	s.loggedIn = true
	s.mu.Unlock()
}

func (s *session) isLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// addCaps appends acknowledged capabilities in acceptance order
func (s *session) addCaps(caps []string) {
	s.mu.Lock()
	s.caps = append(s.caps, caps...)
	s.mu.Unlock()
}

func (s *session) acceptedCaps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.caps...)
}

// close shuts the transport. Idempotent; closing unblocks a pending read.
func (s *session) close() {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
}
