package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ircbot/event"
	"github.com/c360/ircbot/state"
)

type fakeSource struct{ nick string }

func (s *fakeSource) BotID() int64 { return 0 }
func (s *fakeSource) Nick() string { return s.nick }

type fakeSender struct{ lines []string }

func (s *fakeSender) SendRawLine(line string) error {
	s.lines = append(s.lines, line)
	return nil
}

type parserHarness struct {
	parser   *Parser
	registry *state.Registry
	sender   *fakeSender
	events   []event.Event

	loggedIn []string
	newNicks []string
	caps     [][]string
}

func newHarness(botNick string) *parserHarness {
	h := &parserHarness{
		registry: state.NewRegistry(),
		sender:   &fakeSender{},
	}
	h.parser = NewParser(ParserDeps{
		Bot:      &fakeSource{nick: botNick},
		Registry: h.registry,
		Dispatch: func(e event.Event) { h.events = append(h.events, e) },
		Sender:   h.sender,
		Hooks: Hooks{
			LoggedIn:    func(nick string) { h.loggedIn = append(h.loggedIn, nick) },
			NickChanged: func(nick string) { h.newNicks = append(h.newNicks, nick) },
			CapAck:      func(caps []string) { h.caps = append(h.caps, caps) },
		},
	})
	return h
}

func (h *parserHarness) handle(t *testing.T, raw string) {
	t.Helper()
	require.NoError(t, h.parser.HandleLine(raw))
}

func TestChannelMessage(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":alice!ali@host PRIVMSG #go :hello")

	require.Len(t, h.events, 1)
	msg, ok := h.events[0].(*event.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, "#go", msg.Channel)
	assert.Equal(t, "alice", msg.Nick)
	assert.Equal(t, "hello", msg.Text)

	u, ok := h.registry.GetUser("alice")
	require.True(t, ok)
	assert.Equal(t, "ali", u.Login)
	assert.Equal(t, "host", u.Hostmask)
}

func TestPrivateMessage(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":alice!ali@host PRIVMSG mybot :psst")

	require.Len(t, h.events, 1)
	pm, ok := h.events[0].(*event.PrivateMessageEvent)
	require.True(t, ok)
	assert.Equal(t, "alice", pm.Nick)
	assert.Equal(t, "psst", pm.Text)
}

func TestCTCPAction(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":alice!ali@host PRIVMSG #go :\x01ACTION waves\x01")

	require.Len(t, h.events, 1)
	act, ok := h.events[0].(*event.ActionEvent)
	require.True(t, ok)
	assert.Equal(t, "#go", act.Channel)
	assert.Equal(t, "waves", act.Text)
}

func TestServerPingAnsweredBeforeDispatch(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, "PING :irc.example.com")

	assert.Equal(t, []string{"PONG :irc.example.com"}, h.sender.lines)
	require.Len(t, h.events, 1)
	ping, ok := h.events[0].(*event.ServerPingEvent)
	require.True(t, ok)
	assert.Equal(t, "irc.example.com", ping.Token)
}

func TestLoginCompletionOn004(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":irc.example.com 004 mybot irc.example.com testd aiwro Ov")

	assert.Equal(t, []string{"mybot"}, h.loggedIn)
	require.Len(t, h.events, 2)
	assert.IsType(t, &event.ServerResponseEvent{}, h.events[0])
	assert.IsType(t, &event.ConnectEvent{}, h.events[1])
}

func TestLoginCompletionOn005Fallback(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":irc.example.com 005 mybot CHANTYPES=# :are supported by this server")

	assert.Equal(t, []string{"mybot"}, h.loggedIn)
	require.Len(t, h.events, 2)
	assert.IsType(t, &event.ConnectEvent{}, h.events[1])
}

func TestLoginCompletionFiresOnce(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":irc.example.com 004 mybot irc.example.com testd aiwro Ov")
	h.handle(t, ":irc.example.com 005 mybot CHANTYPES=# :are supported by this server")

	assert.Equal(t, []string{"mybot"}, h.loggedIn)
	// The repeat numeric still surfaces as a plain server response
	require.Len(t, h.events, 3)
	assert.IsType(t, &event.ServerResponseEvent{}, h.events[2])
}

func TestNamesReplyPopulatesMembership(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":irc.example.com 353 mybot = #go :mybot @alice +bob")

	assert.Equal(t, []string{"alice", "bob", "mybot"}, h.registry.UsersIn("#go"))
}

func TestJoinAndSelfPart(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":alice!a@h JOIN #go")
	h.handle(t, ":mybot!bot@h JOIN #go")

	assert.Equal(t, []string{"alice", "mybot"}, h.registry.UsersIn("#go"))

	// Another user parting only drops their membership
	h.handle(t, ":alice!a@h PART #go :bye")
	assert.Equal(t, []string{"mybot"}, h.registry.UsersIn("#go"))

	// The bot parting drops the channel entirely
	h.handle(t, ":mybot!bot@h PART #go")
	_, ok := h.registry.GetChannel("#go")
	assert.False(t, ok)
}

func TestQuitRemovesUserEverywhere(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":alice!a@h JOIN #go")
	h.handle(t, ":alice!a@h JOIN #rust")
	h.handle(t, ":alice!a@h QUIT :leaving")

	assert.Empty(t, h.registry.UsersIn("#go"))
	assert.Empty(t, h.registry.UsersIn("#rust"))
	quit := h.events[len(h.events)-1].(*event.QuitEvent)
	assert.Equal(t, "leaving", quit.Reason)
}

func TestKickSelfDropsChannel(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":mybot!bot@h JOIN #go")
	h.handle(t, ":op!o@h KICK #go mybot :begone")

	_, ok := h.registry.GetChannel("#go")
	assert.False(t, ok)

	kick := h.events[len(h.events)-1].(*event.KickEvent)
	assert.Equal(t, "op", kick.Nick)
	assert.Equal(t, "mybot", kick.Recipient)
	assert.Equal(t, "begone", kick.Reason)
}

func TestSelfNickChangeCallsHook(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":mybot!bot@h NICK :mybot2")

	assert.Equal(t, []string{"mybot2"}, h.newNicks)
	nc := h.events[len(h.events)-1].(*event.NickChangeEvent)
	assert.Equal(t, "mybot", nc.OldNick)
	assert.Equal(t, "mybot2", nc.NewNick)
}

func TestOtherNickChangeSkipsHook(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":alice!a@h JOIN #go")
	h.handle(t, ":alice!a@h NICK :alicia")

	assert.Empty(t, h.newNicks)
	assert.Equal(t, []string{"alicia"}, h.registry.UsersIn("#go"))
}

func TestTopicUpdatesRegistry(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":alice!a@h TOPIC #go :all things go")

	c, ok := h.registry.GetChannel("#go")
	require.True(t, ok)
	assert.Equal(t, "all things go", c.Topic)
}

func TestChannelAndUserMode(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":op!o@h MODE #go +o alice")
	h.handle(t, ":mybot!b@h MODE mybot +i")

	mode := h.events[0].(*event.ModeEvent)
	assert.Equal(t, "#go", mode.Channel)
	assert.Equal(t, "+o alice", mode.Mode)

	umode := h.events[1].(*event.UserModeEvent)
	assert.Equal(t, "mybot", umode.Target)
	assert.Equal(t, "+i", umode.Mode)
}

func TestModeWithoutArgumentsIsUnknown(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":srv MODE")
	h.handle(t, ":srv MODE #go")

	require.Len(t, h.events, 2)
	assert.IsType(t, &event.UnknownEvent{}, h.events[0])
	assert.IsType(t, &event.UnknownEvent{}, h.events[1])
}

func TestCapAckHook(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":irc.example.com CAP mybot ACK :multi-prefix sasl")

	require.Len(t, h.caps, 1)
	assert.Equal(t, []string{"multi-prefix", "sasl"}, h.caps[0])
	assert.Empty(t, h.events)
}

func TestUnknownCommandDispatchesUnknownEvent(t *testing.T) {
	h := newHarness("mybot")
	h.handle(t, ":irc.example.com WALLOPS :server going down")

	require.Len(t, h.events, 1)
	assert.IsType(t, &event.UnknownEvent{}, h.events[0])
}

func TestClosedParserDropsLines(t *testing.T) {
	h := newHarness("mybot")
	h.parser.Close()
	h.handle(t, ":alice!a@h PRIVMSG #go :hello")

	assert.Empty(t, h.events)
}

func TestMalformedLineReturnsError(t *testing.T) {
	h := newHarness("mybot")
	assert.Error(t, h.parser.HandleLine("   "))
}
