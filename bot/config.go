package bot

import (
	"time"

	"github.com/c360/ircbot/bridge"
	"github.com/c360/ircbot/errors"
	"github.com/c360/ircbot/event"
	"github.com/c360/ircbot/ident"
	"github.com/c360/ircbot/metric"
	"github.com/c360/ircbot/transport"
)

// WebIRC holds the proxy-forwarding header sent first in the handshake when
// the bot fronts for another client (gateway setups).
type WebIRC struct {
	Enabled  bool   `json:"enabled"`
	Password string `json:"password"`
	Username string `json:"username"`
	Hostname string `json:"hostname"`
	Address  string `json:"address"`
}

// Config holds everything a bot needs to run one connection. It is read-only
// to the bot; callers build it once and never mutate it afterwards.
type Config struct {
	// Server is the endpoint: "host:port" for TCP and TLS transports, a
	// ws:// or wss:// URL for the websocket transport
	Server string `json:"server"`
	// Password is the server connection password, sent as PASS when set
	Password string `json:"password"`

	// Name is the nickname requested at registration
	Name string `json:"name"`
	// Login is the ident/username part of the registration
	Login string `json:"login"`
	// RealName is the free-form identity string sent with USER
	RealName string `json:"realName"`

	WebIRC WebIRC `json:"webIRC"`
	// CapEnabled triggers capability negotiation before identity
	// announcement
	CapEnabled bool `json:"capEnabled"`

	AutoReconnect bool `json:"autoReconnect"`
	AutoRejoin    bool `json:"autoRejoin"`

	// MaxLineLength bounds outbound lines including the CRLF terminator
	MaxLineLength int `json:"maxLineLength"`
	// MessageDelay spaces queued outbound commands
	MessageDelay time.Duration `json:"messageDelay"`
	// SocketTimeout is the idle read bound; one liveness probe is sent
	// per expiry
	SocketTimeout time.Duration `json:"socketTimeout"`

	// Dialer opens the transport; defaults to plain TCP
	Dialer transport.Dialer `json:"-"`
	// Manager fans events out to listeners; defaults to a sequential
	// manager
	Manager event.Manager `json:"-"`
	// Ident, when set, is told about each connection's local port so it
	// can answer the server's ident query
	Ident *ident.Server `json:"-"`
	// Bridge, when set, republishes every dispatched event
	Bridge *bridge.Bridge `json:"-"`
	// Metrics, when set, receives the core counters for this bot
	Metrics *metric.CoreMetrics `json:"-"`
}

// Validate checks required fields and fills defaults
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "bot", "validate", "server is required")
	}
	if c.Name == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "bot", "validate", "name is required")
	}
	if c.Login == "" {
		c.Login = c.Name
	}
	if c.RealName == "" {
		c.RealName = c.Name
	}
	if c.MaxLineLength <= 0 {
		c.MaxLineLength = 512
	}
	if c.MaxLineLength < 64 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "bot", "validate", "maxLineLength below protocol minimum")
	}
	if c.SocketTimeout <= 0 {
		c.SocketTimeout = 5 * time.Minute
	}
	if c.WebIRC.Enabled && (c.WebIRC.Username == "" || c.WebIRC.Hostname == "" || c.WebIRC.Address == "") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "bot", "validate", "webIRC requires username, hostname and address")
	}
	if c.Dialer == nil {
		c.Dialer = &transport.TCP{Timeout: 30 * time.Second}
	}
	return nil
}
