// Package ident runs a minimal identification protocol responder. Some IRC
// servers query the connecting host's ident port before accepting a
// registration; the responder answers those queries with the login the bot
// registered for that connection.
package ident

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/c360/ircbot/errors"
)

// DefaultPort is the well-known identification protocol port.
const DefaultPort = 113

// Server answers ident queries for registered local connections. Entries are
// keyed by the local port of the outbound IRC connection; queries for
// unregistered ports receive NO-USER.
type Server struct {
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	entries  map[int]string
	closed   bool
}

// NewServer creates an ident responder; Start must be called before it
// answers queries
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default().With("component", "ident")
	}
	return &Server{
		logger:  logger,
		entries: make(map[int]string),
	}
}

// Start binds the listener and begins serving queries in the background.
// Binding the well-known port usually needs elevated privileges; tests bind
// port 0.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.WrapMisuse(errors.ErrAlreadyShutdown, "ident", "start", "server is closed")
	}
	if s.listener != nil {
		return errors.WrapMisuse(errors.ErrAlreadyConnected, "ident", "start", "server already started")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapTransient(err, "ident", "start", "bind "+addr)
	}
	s.listener = ln
	go s.serve(ln)
	s.logger.Info("ident responder listening", "addr", ln.Addr().String())
	return nil
}

// Addr reports the bound listen address, or empty before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// AddEntry registers the login to report for a connection using the given
// local port
func (s *Server) AddEntry(localPort int, login string) {
	s.mu.Lock()
	s.entries[localPort] = login
	s.mu.Unlock()
}

// RemoveEntry drops the registration for a local port
func (s *Server) RemoveEntry(localPort int) {
	s.mu.Lock()
	delete(s.entries, localPort)
	s.mu.Unlock()
}

// Close stops the listener and drops all entries. Safe to call more than
// once.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.entries = make(map[int]string)
	if s.listener != nil {
		s.listener.Close()
	}
}

func (s *Server) serve(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

// handle answers a single query of the form "localPort , remotePort"
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	line = strings.TrimSpace(line)

	localPort, remotePort, ok := parseQuery(line)
	if !ok {
		fmt.Fprintf(conn, "%s : ERROR : INVALID-PORT\r\n", line)
		return
	}

	s.mu.Lock()
	login, found := s.entries[localPort]
	s.mu.Unlock()

	if !found {
		s.logger.Debug("ident query for unknown port", "local", localPort, "remote", remotePort)
		fmt.Fprintf(conn, "%d , %d : ERROR : NO-USER\r\n", localPort, remotePort)
		return
	}
	fmt.Fprintf(conn, "%d , %d : USERID : UNIX : %s\r\n", localPort, remotePort, login)
}

func parseQuery(line string) (localPort, remotePort int, ok bool) {
	parts := strings.SplitN(line, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lp, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || lp < 1 || lp > 65535 {
		return 0, 0, false
	}
	rp, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || rp < 1 || rp > 65535 {
		return 0, 0, false
	}
	return lp, rp, true
}
