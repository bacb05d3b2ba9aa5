package bridge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ircbot/event"
)

type fakeSource struct {
	id   int64
	nick string
}

func (s *fakeSource) BotID() int64 { return s.id }
func (s *fakeSource) Nick() string { return s.nick }

func TestConfigValidate(t *testing.T) {
	cfg := Config{URL: "nats://localhost:4222"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "irc.events", cfg.SubjectPrefix)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, -1, cfg.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.ReconnectWait)

	missing := Config{}
	assert.Error(t, missing.Validate())
}

func TestPublishBeforeConnect(t *testing.T) {
	b, err := New(Config{URL: "nats://localhost:4222"}, nil)
	require.NoError(t, err)

	src := &fakeSource{id: 1, nick: "mybot"}
	err = b.Publish(&event.MessageEvent{Base: event.NewBase(src), Channel: "#go", Nick: "alice", Text: "hi"})
	assert.Error(t, err)

	b.Close() // close before connect is a no-op
}

func TestMakeEnvelope(t *testing.T) {
	src := &fakeSource{id: 7, nick: "mybot"}
	e := &event.MessageEvent{Base: event.NewBase(src), Channel: "#go", Nick: "alice", Text: "hello"}

	env, err := makeEnvelope(e)
	require.NoError(t, err)

	assert.Equal(t, e.ID().String(), env.ID)
	assert.Equal(t, "MessageEvent", env.Type)
	assert.Equal(t, int64(7), env.BotID)
	assert.Equal(t, "mybot", env.BotNick)
	assert.WithinDuration(t, time.Now(), env.Timestamp, time.Minute)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "#go", data["Channel"])
	assert.Equal(t, "alice", data["Nick"])
	assert.Equal(t, "hello", data["Text"])
}
