// Package irc translates raw IRC protocol lines into framework events and
// registry updates. It implements the message grammar of RFC 1459:
// [":" prefix SPACE] command [params] [" :" trailing].
package irc

import (
	"strings"

	"github.com/c360/ircbot/errors"
)

// Line is one parsed protocol line
type Line struct {
	Prefix  string   // server name or nick!login@host, without the leading ':'
	Command string   // upper-cased command or 3-digit numeric
	Params  []string // middle params plus trailing as the last element
}

// ParseLine splits a raw line into prefix, command and params
func ParseLine(raw string) (Line, error) {
	raw = strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(raw) == "" {
		return Line{}, errors.WrapInvalid(errors.ErrMalformedLine, "Parser", "ParseLine", "empty line")
	}

	var line Line
	rest := raw

	if strings.HasPrefix(rest, ":") {
		idx := strings.Index(rest, " ")
		if idx < 0 {
			return Line{}, errors.WrapInvalid(errors.ErrMalformedLine, "Parser", "ParseLine", "prefix without command")
		}
		line.Prefix = rest[1:idx]
		rest = rest[idx+1:]
	}

	// Trailing param: everything after " :" is one argument
	var trailing string
	hasTrailing := false
	if idx := strings.Index(rest, " :"); idx >= 0 {
		trailing = rest[idx+2:]
		hasTrailing = true
		rest = rest[:idx]
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Line{}, errors.WrapInvalid(errors.ErrMalformedLine, "Parser", "ParseLine", "missing command")
	}

	line.Command = strings.ToUpper(fields[0])
	line.Params = fields[1:]
	if hasTrailing {
		line.Params = append(line.Params, trailing)
	}

	return line, nil
}

// SourceNick extracts the nick from a nick!login@host prefix. A server
// prefix without '!' is returned whole.
func (l Line) SourceNick() string {
	if idx := strings.IndexAny(l.Prefix, "!@"); idx >= 0 {
		return l.Prefix[:idx]
	}
	return l.Prefix
}

// SourceLogin extracts the login from a nick!login@host prefix
func (l Line) SourceLogin() string {
	bang := strings.Index(l.Prefix, "!")
	at := strings.Index(l.Prefix, "@")
	if bang < 0 || at < 0 || at < bang {
		return ""
	}
	return l.Prefix[bang+1 : at]
}

// SourceHost extracts the host from a nick!login@host prefix
func (l Line) SourceHost() string {
	if at := strings.Index(l.Prefix, "@"); at >= 0 {
		return l.Prefix[at+1:]
	}
	return ""
}

// Param returns params[i] or empty when absent
func (l Line) Param(i int) string {
	if i < 0 || i >= len(l.Params) {
		return ""
	}
	return l.Params[i]
}

// IsChannel reports whether target names a channel
func IsChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&") ||
		strings.HasPrefix(target, "+") || strings.HasPrefix(target, "!")
}
