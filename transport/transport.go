// Package transport abstracts how a bot reaches a server. Every dialer
// produces a net.Conn carrying the usual CRLF-delimited line stream, so the
// connection loop reads and writes the same way over plain TCP, TLS, or a
// websocket gateway.
package transport

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/c360/ircbot/errors"
)

// Dialer opens one connection to an address. Implementations honor context
// cancellation during the dial.
type Dialer interface {
	Dial(ctx context.Context, addr string) (net.Conn, error)
}

// TCP dials plain TCP connections.
type TCP struct {
	// Timeout bounds each dial attempt; zero means no per-attempt bound
	// beyond the context
	Timeout time.Duration
	// LocalAddr optionally pins the source address
	LocalAddr *net.TCPAddr
}

func (d *TCP) Dial(ctx context.Context, addr string) (net.Conn, error) {
	nd := net.Dialer{Timeout: d.Timeout}
	if d.LocalAddr != nil {
		nd.LocalAddr = d.LocalAddr
	}
	conn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.WrapTransient(err, "transport", "tcp-dial", "dial "+addr)
	}
	return conn, nil
}

// TLS dials TLS-wrapped TCP connections.
type TLS struct {
	Timeout   time.Duration
	LocalAddr *net.TCPAddr
	// Config is cloned per dial; a nil Config uses defaults with the
	// server name taken from the address
	Config *tls.Config
}

func (d *TLS) Dial(ctx context.Context, addr string) (net.Conn, error) {
	cfg := d.Config.Clone()
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, errors.WrapInvalid(err, "transport", "tls-dial", "split address "+addr)
		}
		cfg.ServerName = host
	}
	nd := net.Dialer{Timeout: d.Timeout}
	if d.LocalAddr != nil {
		nd.LocalAddr = d.LocalAddr
	}
	td := tls.Dialer{NetDialer: &nd, Config: cfg}
	conn, err := td.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.WrapTransient(err, "transport", "tls-dial", "dial "+addr)
	}
	return conn, nil
}
