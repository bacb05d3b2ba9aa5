package irc

import (
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/c360/ircbot/event"
	"github.com/c360/ircbot/state"
)

// Sender writes a single raw line to the server. The parser uses it to answer
// server PINGs directly, before listeners see the event.
type Sender interface {
	SendRawLine(line string) error
}

// Hooks let the parser notify the bot of session changes it cannot apply
// itself: login completion, its own nick changing, capability acknowledgment.
type Hooks struct {
	LoggedIn    func(nick string)
	NickChanged func(newNick string)
	CapAck      func(caps []string)
}

// Parser converts protocol lines into events and registry mutations for one
// bot instance. HandleLine never returns an error for handler-level faults;
// those stay inside the dispatch path.
type Parser struct {
	bot      event.Source
	registry *state.Registry
	dispatch func(event.Event)
	sender   Sender
	hooks    Hooks
	logger   *slog.Logger
	closed   atomic.Bool

	// registered flips on the first of 004/005 so login completion
	// fires once even when the server sends both
	registered bool
}

// ParserDeps holds the collaborators a Parser needs
type ParserDeps struct {
	Bot      event.Source
	Registry *state.Registry
	Dispatch func(event.Event)
	Sender   Sender
	Hooks    Hooks
	Logger   *slog.Logger
}

// NewParser creates a parser bound to one bot's registry and dispatcher
func NewParser(deps ParserDeps) *Parser {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default().With("component", "parser")
	}
	return &Parser{
		bot:      deps.Bot,
		registry: deps.Registry,
		dispatch: deps.Dispatch,
		sender:   deps.Sender,
		hooks:    deps.Hooks,
		logger:   logger,
	}
}

// Close releases the parser. Lines arriving after Close are dropped, which
// covers the race between connection teardown and a final buffered line.
func (p *Parser) Close() {
	p.closed.Store(true)
}

// HandleLine parses one raw line and routes the resulting event
func (p *Parser) HandleLine(raw string) error {
	if p.closed.Load() {
		return nil
	}

	line, err := ParseLine(raw)
	if err != nil {
		return err
	}

	if code, numErr := strconv.Atoi(line.Command); numErr == nil {
		p.handleNumeric(code, line, raw)
		return nil
	}

	switch line.Command {
	case "PING":
		p.handlePing(line)
	case "PRIVMSG":
		p.handlePrivmsg(line)
	case "NOTICE":
		p.dispatch(&event.NoticeEvent{
			Base:   event.NewBase(p.bot),
			Nick:   line.SourceNick(),
			Target: line.Param(0),
			Text:   line.Param(1),
		})
	case "JOIN":
		p.handleJoin(line)
	case "PART":
		p.handlePart(line)
	case "QUIT":
		p.handleQuit(line)
	case "KICK":
		p.handleKick(line)
	case "NICK":
		p.handleNick(line)
	case "TOPIC":
		p.handleTopic(line)
	case "MODE":
		p.handleMode(line, raw)
	case "INVITE":
		p.dispatch(&event.InviteEvent{
			Base:    event.NewBase(p.bot),
			Nick:    line.SourceNick(),
			Channel: line.Param(1),
		})
	case "CAP":
		p.handleCap(line)
	default:
		p.dispatch(&event.UnknownEvent{Base: event.NewBase(p.bot), Line: raw})
	}
	return nil
}

func (p *Parser) isSelf(nick string) bool {
	return strings.EqualFold(nick, p.bot.Nick())
}

func (p *Parser) handlePing(line Line) {
	token := line.Param(0)
	if p.sender != nil {
		if err := p.sender.SendRawLine("PONG :" + token); err != nil {
			p.logger.Error("Failed to answer server PING", "error", err)
		}
	}
	p.dispatch(&event.ServerPingEvent{Base: event.NewBase(p.bot), Token: token})
}

func (p *Parser) handleNumeric(code int, line Line, raw string) {
	switch code {
	case 4, 5: // RPL_MYINFO / RPL_ISUPPORT: registration is complete
		if p.registered {
			break
		}
		p.registered = true
		if p.hooks.LoggedIn != nil {
			p.hooks.LoggedIn(line.Param(0))
		}
		p.dispatch(&event.ServerResponseEvent{Base: event.NewBase(p.bot), Code: code, Raw: raw})
		p.dispatch(&event.ConnectEvent{Base: event.NewBase(p.bot)})
		return
	case 332: // RPL_TOPIC: <client> <channel> :<topic>
		p.registry.SetTopic(line.Param(1), line.Param(2))
	case 353: // RPL_NAMREPLY: <client> <symbol> <channel> :nick nick ...
		channel := line.Param(2)
		for _, nick := range strings.Fields(line.Param(3)) {
			p.registry.AddMembership(strings.TrimLeft(nick, "@+%&~"), channel)
		}
	}
	p.dispatch(&event.ServerResponseEvent{Base: event.NewBase(p.bot), Code: code, Raw: raw})
}

func (p *Parser) handlePrivmsg(line Line) {
	target := line.Param(0)
	text := line.Param(1)
	nick := line.SourceNick()
	p.registry.SetUserDetails(nick, line.SourceLogin(), line.SourceHost())

	// CTCP ACTION is delimited by \x01
	if strings.HasPrefix(text, "\x01ACTION ") && strings.HasSuffix(text, "\x01") {
		action := strings.TrimSuffix(strings.TrimPrefix(text, "\x01ACTION "), "\x01")
		channel := ""
		if IsChannel(target) {
			channel = target
		}
		p.dispatch(&event.ActionEvent{
			Base:    event.NewBase(p.bot),
			Nick:    nick,
			Channel: channel,
			Text:    action,
		})
		return
	}

	if IsChannel(target) {
		p.dispatch(&event.MessageEvent{
			Base:    event.NewBase(p.bot),
			Channel: target,
			Nick:    nick,
			Text:    text,
		})
		return
	}
	p.dispatch(&event.PrivateMessageEvent{
		Base: event.NewBase(p.bot),
		Nick: nick,
		Text: text,
	})
}

func (p *Parser) handleJoin(line Line) {
	nick := line.SourceNick()
	channel := line.Param(0)
	p.registry.SetUserDetails(nick, line.SourceLogin(), line.SourceHost())
	p.registry.AddMembership(nick, channel)
	p.dispatch(&event.JoinEvent{Base: event.NewBase(p.bot), Nick: nick, Channel: channel})
}

func (p *Parser) handlePart(line Line) {
	nick := line.SourceNick()
	channel := line.Param(0)
	if p.isSelf(nick) {
		p.registry.RemoveChannel(channel)
	} else {
		p.registry.RemoveMembership(nick, channel)
	}
	p.dispatch(&event.PartEvent{
		Base:    event.NewBase(p.bot),
		Nick:    nick,
		Channel: channel,
		Reason:  line.Param(1),
	})
}

func (p *Parser) handleQuit(line Line) {
	nick := line.SourceNick()
	p.registry.RemoveUser(nick)
	p.dispatch(&event.QuitEvent{Base: event.NewBase(p.bot), Nick: nick, Reason: line.Param(0)})
}

func (p *Parser) handleKick(line Line) {
	channel := line.Param(0)
	recipient := line.Param(1)
	if p.isSelf(recipient) {
		p.registry.RemoveChannel(channel)
	} else {
		p.registry.RemoveMembership(recipient, channel)
	}
	p.dispatch(&event.KickEvent{
		Base:      event.NewBase(p.bot),
		Nick:      line.SourceNick(),
		Recipient: recipient,
		Channel:   channel,
		Reason:    line.Param(2),
	})
}

func (p *Parser) handleNick(line Line) {
	oldNick := line.SourceNick()
	newNick := line.Param(0)
	p.registry.RenameUser(oldNick, newNick)
	if p.isSelf(oldNick) && p.hooks.NickChanged != nil {
		p.hooks.NickChanged(newNick)
	}
	p.dispatch(&event.NickChangeEvent{Base: event.NewBase(p.bot), OldNick: oldNick, NewNick: newNick})
}

func (p *Parser) handleTopic(line Line) {
	channel := line.Param(0)
	topic := line.Param(1)
	p.registry.SetTopic(channel, topic)
	p.dispatch(&event.TopicEvent{
		Base:    event.NewBase(p.bot),
		Nick:    line.SourceNick(),
		Channel: channel,
		Topic:   topic,
	})
}

func (p *Parser) handleMode(line Line, raw string) {
	if len(line.Params) < 2 {
		p.dispatch(&event.UnknownEvent{Base: event.NewBase(p.bot), Line: raw})
		return
	}
	target := line.Param(0)
	mode := strings.Join(line.Params[1:], " ")
	if IsChannel(target) {
		p.dispatch(&event.ModeEvent{
			Base:    event.NewBase(p.bot),
			Nick:    line.SourceNick(),
			Channel: target,
			Mode:    mode,
		})
		return
	}
	p.dispatch(&event.UserModeEvent{
		Base:   event.NewBase(p.bot),
		Nick:   line.SourceNick(),
		Target: target,
		Mode:   mode,
	})
}

// handleCap handles the acknowledgement leg of capability negotiation:
// ":server CAP <client> ACK :cap1 cap2". The request side lives in output.CAP;
// negotiation is a session concern, so no event is dispatched here.
func (p *Parser) handleCap(line Line) {
	if strings.EqualFold(line.Param(1), "ACK") && p.hooks.CapAck != nil {
		p.hooks.CapAck(strings.Fields(line.Param(2)))
	}
}
