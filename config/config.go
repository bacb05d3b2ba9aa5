// Package config loads and validates the application configuration file.
package config

import (
	"crypto/tls"
	"encoding/json"
	"os"
	"time"

	"github.com/c360/ircbot/bot"
	"github.com/c360/ircbot/bridge"
	"github.com/c360/ircbot/errors"
	"github.com/c360/ircbot/transport"
)

// Transport type constants
const (
	TransportTCP       = "tcp"
	TransportTLS       = "tls"
	TransportWebSocket = "websocket"
)

// TransportConfig selects and tunes how the bot reaches the server.
type TransportConfig struct {
	// Type is one of tcp, tls, websocket; defaults to tcp
	Type string `json:"type"`
	// InsecureSkipVerify disables certificate verification for tls and
	// wss connections, test servers only
	InsecureSkipVerify bool          `json:"insecureSkipVerify"`
	DialTimeout        time.Duration `json:"dialTimeout"`
}

// IdentConfig controls the optional ident responder.
type IdentConfig struct {
	Enabled bool `json:"enabled"`
	// Listen is the bind address, ":113" in production
	Listen string `json:"listen"`
}

// HTTPConfig controls the diagnostics listener serving metrics and health.
type HTTPConfig struct {
	Enabled bool   `json:"enabled"`
	Listen  string `json:"listen"`
}

// Config is the complete application configuration.
type Config struct {
	Bot       bot.Config      `json:"bot"`
	Transport TransportConfig `json:"transport"`
	Ident     IdentConfig     `json:"ident"`
	HTTP      HTTPConfig      `json:"http"`
	// Bridge is optional; nil disables event republishing
	Bridge *bridge.Config `json:"bridge,omitempty"`
}

// Load reads and validates a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config", "load", "read "+path)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapInvalid(err, "config", "load", "parse "+path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section and fills defaults
func (c *Config) Validate() error {
	if err := c.Bot.Validate(); err != nil {
		return err
	}
	switch c.Transport.Type {
	case "":
		c.Transport.Type = TransportTCP
	case TransportTCP, TransportTLS, TransportWebSocket:
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "validate",
			"unknown transport type "+c.Transport.Type)
	}
	if c.Transport.DialTimeout <= 0 {
		c.Transport.DialTimeout = 30 * time.Second
	}
	if c.Ident.Enabled && c.Ident.Listen == "" {
		c.Ident.Listen = ":113"
	}
	if c.HTTP.Enabled && c.HTTP.Listen == "" {
		c.HTTP.Listen = ":9113"
	}
	if c.Bridge != nil {
		if err := c.Bridge.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// BuildDialer constructs the transport dialer the config selects
func (c *Config) BuildDialer() transport.Dialer {
	switch c.Transport.Type {
	case TransportTLS:
		return &transport.TLS{
			Timeout: c.Transport.DialTimeout,
			Config:  &tls.Config{InsecureSkipVerify: c.Transport.InsecureSkipVerify},
		}
	case TransportWebSocket:
		return &transport.WebSocket{
			HandshakeTimeout: c.Transport.DialTimeout,
			TLSConfig:        &tls.Config{InsecureSkipVerify: c.Transport.InsecureSkipVerify},
		}
	default:
		return &transport.TCP{Timeout: c.Transport.DialTimeout}
	}
}
