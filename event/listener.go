package event

// Listener receives dispatched events. There is exactly one entry point per
// concrete variant and one per capability tag; embed Adapter to implement
// only the methods you care about.
type Listener interface {
	// Concrete variants
	OnSocketConnect(*SocketConnectEvent) error
	OnConnect(*ConnectEvent) error
	OnDisconnect(*DisconnectEvent) error
	OnReconnect(*ReconnectEvent) error
	OnMessage(*MessageEvent) error
	OnPrivateMessage(*PrivateMessageEvent) error
	OnNotice(*NoticeEvent) error
	OnAction(*ActionEvent) error
	OnJoin(*JoinEvent) error
	OnPart(*PartEvent) error
	OnQuit(*QuitEvent) error
	OnKick(*KickEvent) error
	OnNickChange(*NickChangeEvent) error
	OnTopic(*TopicEvent) error
	OnMode(*ModeEvent) error
	OnUserMode(*UserModeEvent) error
	OnInvite(*InviteEvent) error
	OnServerPing(*ServerPingEvent) error
	OnServerResponse(*ServerResponseEvent) error
	OnUnknown(*UnknownEvent) error

	// Capability tags
	OnGenericMessage(GenericMessage) error
	OnGenericChannel(GenericChannel) error
	OnGenericUser(GenericUser) error
	OnGenericChannelMode(GenericChannelMode) error
	OnGenericUserMode(GenericUserMode) error
}

// Adapter is a no-op Listener implementation meant for embedding
type Adapter struct{}

var _ Listener = (*Adapter)(nil)

func (*Adapter) OnSocketConnect(*SocketConnectEvent) error   { return nil }
func (*Adapter) OnConnect(*ConnectEvent) error               { return nil }
func (*Adapter) OnDisconnect(*DisconnectEvent) error         { return nil }
func (*Adapter) OnReconnect(*ReconnectEvent) error           { return nil }
func (*Adapter) OnMessage(*MessageEvent) error               { return nil }
func (*Adapter) OnPrivateMessage(*PrivateMessageEvent) error { return nil }
func (*Adapter) OnNotice(*NoticeEvent) error                 { return nil }
func (*Adapter) OnAction(*ActionEvent) error                 { return nil }
func (*Adapter) OnJoin(*JoinEvent) error                     { return nil }
func (*Adapter) OnPart(*PartEvent) error                     { return nil }
func (*Adapter) OnQuit(*QuitEvent) error                     { return nil }
func (*Adapter) OnKick(*KickEvent) error                     { return nil }
func (*Adapter) OnNickChange(*NickChangeEvent) error         { return nil }
func (*Adapter) OnTopic(*TopicEvent) error                   { return nil }
func (*Adapter) OnMode(*ModeEvent) error                     { return nil }
func (*Adapter) OnUserMode(*UserModeEvent) error             { return nil }
func (*Adapter) OnInvite(*InviteEvent) error                 { return nil }
func (*Adapter) OnServerPing(*ServerPingEvent) error         { return nil }
func (*Adapter) OnServerResponse(*ServerResponseEvent) error { return nil }
func (*Adapter) OnUnknown(*UnknownEvent) error               { return nil }

func (*Adapter) OnGenericMessage(GenericMessage) error         { return nil }
func (*Adapter) OnGenericChannel(GenericChannel) error         { return nil }
func (*Adapter) OnGenericUser(GenericUser) error               { return nil }
func (*Adapter) OnGenericChannelMode(GenericChannelMode) error { return nil }
func (*Adapter) OnGenericUserMode(GenericUserMode) error       { return nil }
