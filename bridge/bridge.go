// Package bridge republishes bot events onto a NATS message bus so external
// consumers can observe IRC traffic without linking against the framework.
// The bridge is optional; a bot without one dispatches events locally only.
package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/ircbot/errors"
	"github.com/c360/ircbot/event"
	"github.com/c360/ircbot/pkg/retry"
)

// Config holds bridge connection settings.
type Config struct {
	// URL is the NATS server URL, e.g. nats://localhost:4222
	URL string `json:"url"`
	// SubjectPrefix prefixes every published subject; the event type is
	// appended, so a prefix of "irc.events" yields "irc.events.message"
	SubjectPrefix string `json:"subjectPrefix"`
	// ClientName identifies this bridge to the server
	ClientName string `json:"clientName"`

	ConnectTimeout time.Duration `json:"connectTimeout"`
	MaxReconnects  int           `json:"maxReconnects"`
	ReconnectWait  time.Duration `json:"reconnectWait"`
}

// Validate checks the configuration and fills defaults
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "bridge", "validate", "url is required")
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = "irc.events"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = -1
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = 2 * time.Second
	}
	return nil
}

// Envelope is the wire form of a republished event. Data holds the concrete
// event's exported fields.
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	BotID     int64           `json:"botId"`
	BotNick   string          `json:"botNick"`
	Data      json.RawMessage `json:"data"`
}

// Bridge publishes event envelopes to NATS.
type Bridge struct {
	config Config
	logger *slog.Logger

	mu   sync.RWMutex
	conn *nats.Conn
}

// New creates an unconnected bridge
func New(config Config, logger *slog.Logger) (*Bridge, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default().With("component", "bridge")
	}
	return &Bridge{config: config, logger: logger}, nil
}

// Connect establishes the NATS connection, retrying transient failures with
// backoff until the context is cancelled
func (b *Bridge) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.MaxReconnects(b.config.MaxReconnects),
		nats.ReconnectWait(b.config.ReconnectWait),
		nats.Timeout(b.config.ConnectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			b.logger.Warn("Bridge disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			b.logger.Info("Bridge reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			b.logger.Info("Bridge connection closed")
		}),
	}
	if b.config.ClientName != "" {
		opts = append(opts, nats.Name(b.config.ClientName))
	}

	conn, err := retry.DoWithResult(ctx, retry.Quick(), func() (*nats.Conn, error) {
		return nats.Connect(b.config.URL, opts...)
	})
	if err != nil {
		return errors.WrapTransient(err, "bridge", "connect", "connect to "+b.config.URL)
	}

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()
	b.logger.Info("Bridge connected", "url", conn.ConnectedUrl())
	return nil
}

// Publish republishes one event. Publish failures are reported but never
// fatal to the caller's connection loop.
func (b *Bridge) Publish(e event.Event) error {
	b.mu.RLock()
	conn := b.conn
	b.mu.RUnlock()
	if conn == nil {
		return errors.WrapMisuse(errors.ErrNotConnected, "bridge", "publish", "bridge is not connected")
	}

	env, err := makeEnvelope(e)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return errors.WrapInvalid(err, "bridge", "publish", "marshal envelope")
	}

	subject := b.config.SubjectPrefix + "." + e.Type()
	if err := conn.Publish(subject, payload); err != nil {
		return errors.WrapTransient(err, "bridge", "publish", "publish to "+subject)
	}
	return nil
}

// makeEnvelope builds the wire form of one event
func makeEnvelope(e event.Event) (Envelope, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, errors.WrapInvalid(err, "bridge", "publish", "marshal event data")
	}
	env := Envelope{
		ID:        e.ID().String(),
		Type:      e.Type(),
		Timestamp: e.Timestamp(),
		Data:      data,
	}
	if src := e.Bot(); src != nil {
		env.BotID = src.BotID()
		env.BotNick = src.Nick()
	}
	return env, nil
}

// Close drains and closes the connection. Safe to call more than once or
// before Connect.
func (b *Bridge) Close() {
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Drain(); err != nil {
		b.logger.Warn("Bridge drain failed", "error", err)
		conn.Close()
	}
}
