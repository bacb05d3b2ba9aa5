package event

import (
	"github.com/c360/ircbot/state"
)

// SocketConnectEvent fires when the transport connection is established,
// before the handshake runs.
type SocketConnectEvent struct {
	Base
}

func (e *SocketConnectEvent) Type() string              { return "SocketConnectEvent" }
func (e *SocketConnectEvent) dispatch(l Listener) error { return l.OnSocketConnect(e) }

// ConnectEvent fires once login to the server has completed
type ConnectEvent struct {
	Base
}

func (e *ConnectEvent) Type() string              { return "ConnectEvent" }
func (e *ConnectEvent) dispatch(l Listener) error { return l.OnConnect(e) }

// DisconnectEvent fires when the connection is gone and no reconnect will be
// attempted. Snapshot holds the registry state at the moment of disconnect.
type DisconnectEvent struct {
	Base
	Snapshot *state.Snapshot
}

func (e *DisconnectEvent) Type() string              { return "DisconnectEvent" }
func (e *DisconnectEvent) dispatch(l Listener) error { return l.OnDisconnect(e) }

// ReconnectEvent reports the outcome of a reconnect attempt
type ReconnectEvent struct {
	Base
	Success bool
	Cause   error
}

func (e *ReconnectEvent) Type() string              { return "ReconnectEvent" }
func (e *ReconnectEvent) dispatch(l Listener) error { return l.OnReconnect(e) }

// MessageEvent is a message sent to a channel
type MessageEvent struct {
	Base
	Channel string
	Nick    string
	Text    string
}

func (e *MessageEvent) Type() string              { return "MessageEvent" }
func (e *MessageEvent) dispatch(l Listener) error { return l.OnMessage(e) }
func (e *MessageEvent) MessageText() string       { return e.Text }
func (e *MessageEvent) SenderNick() string        { return e.Nick }
func (e *MessageEvent) ChannelName() string       { return e.Channel }
func (e *MessageEvent) UserNick() string          { return e.Nick }

// PrivateMessageEvent is a message sent directly to the bot
type PrivateMessageEvent struct {
	Base
	Nick string
	Text string
}

func (e *PrivateMessageEvent) Type() string              { return "PrivateMessageEvent" }
func (e *PrivateMessageEvent) dispatch(l Listener) error { return l.OnPrivateMessage(e) }
func (e *PrivateMessageEvent) MessageText() string       { return e.Text }
func (e *PrivateMessageEvent) SenderNick() string        { return e.Nick }
func (e *PrivateMessageEvent) UserNick() string          { return e.Nick }

// NoticeEvent is a NOTICE sent to the bot or a channel
type NoticeEvent struct {
	Base
	Nick   string
	Target string
	Text   string
}

func (e *NoticeEvent) Type() string              { return "NoticeEvent" }
func (e *NoticeEvent) dispatch(l Listener) error { return l.OnNotice(e) }
func (e *NoticeEvent) MessageText() string       { return e.Text }
func (e *NoticeEvent) SenderNick() string        { return e.Nick }
func (e *NoticeEvent) UserNick() string          { return e.Nick }

// ActionEvent is a CTCP ACTION ("/me"). Channel is empty for private actions.
type ActionEvent struct {
	Base
	Nick    string
	Channel string
	Text    string
}

func (e *ActionEvent) Type() string              { return "ActionEvent" }
func (e *ActionEvent) dispatch(l Listener) error { return l.OnAction(e) }
func (e *ActionEvent) MessageText() string       { return e.Text }
func (e *ActionEvent) SenderNick() string        { return e.Nick }
func (e *ActionEvent) ChannelName() string       { return e.Channel }
func (e *ActionEvent) UserNick() string          { return e.Nick }

// JoinEvent fires when a user (possibly the bot) joins a channel
type JoinEvent struct {
	Base
	Nick    string
	Channel string
}

func (e *JoinEvent) Type() string              { return "JoinEvent" }
func (e *JoinEvent) dispatch(l Listener) error { return l.OnJoin(e) }
func (e *JoinEvent) ChannelName() string       { return e.Channel }
func (e *JoinEvent) UserNick() string          { return e.Nick }

// PartEvent fires when a user leaves a channel
type PartEvent struct {
	Base
	Nick    string
	Channel string
	Reason  string
}

func (e *PartEvent) Type() string              { return "PartEvent" }
func (e *PartEvent) dispatch(l Listener) error { return l.OnPart(e) }
func (e *PartEvent) ChannelName() string       { return e.Channel }
func (e *PartEvent) UserNick() string          { return e.Nick }

// QuitEvent fires when a user disconnects from the server
type QuitEvent struct {
	Base
	Nick   string
	Reason string
}

func (e *QuitEvent) Type() string              { return "QuitEvent" }
func (e *QuitEvent) dispatch(l Listener) error { return l.OnQuit(e) }
func (e *QuitEvent) UserNick() string          { return e.Nick }

// KickEvent fires when a user is kicked from a channel
type KickEvent struct {
	Base
	Nick      string // the user doing the kicking
	Recipient string
	Channel   string
	Reason    string
}

func (e *KickEvent) Type() string              { return "KickEvent" }
func (e *KickEvent) dispatch(l Listener) error { return l.OnKick(e) }
func (e *KickEvent) ChannelName() string       { return e.Channel }
func (e *KickEvent) UserNick() string          { return e.Nick }

// NickChangeEvent fires when a user changes nickname
type NickChangeEvent struct {
	Base
	OldNick string
	NewNick string
}

func (e *NickChangeEvent) Type() string              { return "NickChangeEvent" }
func (e *NickChangeEvent) dispatch(l Listener) error { return l.OnNickChange(e) }
func (e *NickChangeEvent) UserNick() string          { return e.OldNick }

// TopicEvent fires when a channel topic is set or announced
type TopicEvent struct {
	Base
	Nick    string
	Channel string
	Topic   string
}

func (e *TopicEvent) Type() string              { return "TopicEvent" }
func (e *TopicEvent) dispatch(l Listener) error { return l.OnTopic(e) }
func (e *TopicEvent) ChannelName() string       { return e.Channel }
func (e *TopicEvent) UserNick() string          { return e.Nick }

// ModeEvent fires on a channel mode change
type ModeEvent struct {
	Base
	Nick    string
	Channel string
	Mode    string
}

func (e *ModeEvent) Type() string              { return "ModeEvent" }
func (e *ModeEvent) dispatch(l Listener) error { return l.OnMode(e) }
func (e *ModeEvent) ChannelName() string       { return e.Channel }
func (e *ModeEvent) UserNick() string          { return e.Nick }
func (e *ModeEvent) ModeChange() string        { return e.Mode }

// UserModeEvent fires on a user mode change
type UserModeEvent struct {
	Base
	Nick   string
	Target string
	Mode   string
}

func (e *UserModeEvent) Type() string              { return "UserModeEvent" }
func (e *UserModeEvent) dispatch(l Listener) error { return l.OnUserMode(e) }
func (e *UserModeEvent) UserNick() string          { return e.Nick }
func (e *UserModeEvent) TargetNick() string        { return e.Target }
func (e *UserModeEvent) ModeChange() string        { return e.Mode }

// InviteEvent fires when the bot is invited to a channel
type InviteEvent struct {
	Base
	Nick    string
	Channel string
}

func (e *InviteEvent) Type() string              { return "InviteEvent" }
func (e *InviteEvent) dispatch(l Listener) error { return l.OnInvite(e) }
func (e *InviteEvent) ChannelName() string       { return e.Channel }
func (e *InviteEvent) UserNick() string          { return e.Nick }

// ServerPingEvent fires when the server sends a PING. The parser answers
// with PONG before dispatching; this event is informational.
type ServerPingEvent struct {
	Base
	Token string
}

func (e *ServerPingEvent) Type() string              { return "ServerPingEvent" }
func (e *ServerPingEvent) dispatch(l Listener) error { return l.OnServerPing(e) }

// ServerResponseEvent is a numeric reply from the server
type ServerResponseEvent struct {
	Base
	Code int
	Raw  string
}

func (e *ServerResponseEvent) Type() string              { return "ServerResponseEvent" }
func (e *ServerResponseEvent) dispatch(l Listener) error { return l.OnServerResponse(e) }

// UnknownEvent is a line the parser could not classify
type UnknownEvent struct {
	Base
	Line string
}

func (e *UnknownEvent) Type() string              { return "UnknownEvent" }
func (e *UnknownEvent) dispatch(l Listener) error { return l.OnUnknown(e) }
