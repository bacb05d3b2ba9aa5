package output

import (
	"fmt"
	"strings"

	"github.com/c360/ircbot/errors"
)

// IRC formats user-level IRC commands and sends them through the raw queue.
type IRC struct {
	raw *Raw
}

// NewIRC creates the general command façade over a raw sender
func NewIRC(raw *Raw) *IRC {
	return &IRC{raw: raw}
}

// JoinChannel joins a channel without a key
func (o *IRC) JoinChannel(channel string) error {
	return o.JoinChannelWithKey(channel, "")
}

// JoinChannelWithKey joins a channel, supplying the key when non-empty
func (o *IRC) JoinChannelWithKey(channel, key string) error {
	if channel == "" {
		return errors.WrapMisuse(errors.ErrInvalidConfig, "output", "join", "channel name is empty")
	}
	if key == "" {
		return o.raw.RawLine("JOIN " + channel)
	}
	return o.raw.RawLine("JOIN " + channel + " " + key)
}

// PartChannel leaves a channel, with an optional reason
func (o *IRC) PartChannel(channel, reason string) error {
	if reason == "" {
		return o.raw.RawLine("PART " + channel)
	}
	return o.raw.RawLine("PART " + channel + " :" + reason)
}

// Message sends a PRIVMSG to a channel or user. Embedded newlines split the
// text into separate messages so no raw line carries a line break.
func (o *IRC) Message(target, text string) error {
	for _, part := range strings.Split(text, "\n") {
		part = strings.TrimSuffix(part, "\r")
		if err := o.raw.RawLine("PRIVMSG " + target + " :" + part); err != nil {
			return err
		}
	}
	return nil
}

// Notice sends a NOTICE to a channel or user
func (o *IRC) Notice(target, text string) error {
	return o.raw.RawLine("NOTICE " + target + " :" + text)
}

// Action sends a CTCP ACTION ("/me") to a channel or user
func (o *IRC) Action(target, action string) error {
	return o.raw.RawLine("PRIVMSG " + target + " :\x01ACTION " + action + "\x01")
}

// CTCPCommand sends an arbitrary CTCP request to a target
func (o *IRC) CTCPCommand(target, command string) error {
	return o.raw.RawLine("PRIVMSG " + target + " :\x01" + command + "\x01")
}

// CTCPResponse replies to a CTCP request via NOTICE
func (o *IRC) CTCPResponse(target, response string) error {
	return o.raw.RawLine("NOTICE " + target + " :\x01" + response + "\x01")
}

// ChangeNick requests a nickname change
func (o *IRC) ChangeNick(nick string) error {
	return o.raw.RawLine("NICK " + nick)
}

// SetTopic sets a channel topic
func (o *IRC) SetTopic(channel, topic string) error {
	return o.raw.RawLine("TOPIC " + channel + " :" + topic)
}

// SetMode applies a mode change to a channel or user
func (o *IRC) SetMode(target, mode string) error {
	return o.raw.RawLine("MODE " + target + " " + mode)
}

// Invite invites a nick to a channel
func (o *IRC) Invite(nick, channel string) error {
	return o.raw.RawLine("INVITE " + nick + " :" + channel)
}

// Whois queries server information about a nick
func (o *IRC) Whois(nick string) error {
	return o.raw.RawLine("WHOIS " + nick)
}

// QuitServer disconnects from the server with an optional reason
func (o *IRC) QuitServer(reason string) error {
	if reason == "" {
		return o.raw.RawLineNow("QUIT")
	}
	return o.raw.RawLineNow("QUIT :" + reason)
}

// IdentifyNickServ authenticates with NickServ services
func (o *IRC) IdentifyNickServ(password string) error {
	return o.raw.RawLine(fmt.Sprintf("PRIVMSG NickServ :IDENTIFY %s", password))
}
