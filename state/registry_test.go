package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameKeepsMembership(t *testing.T) {
	r := NewRegistry()
	r.AddMembership("alice", "#go")
	r.AddMembership("bob", "#go")

	r.RenameUser("alice", "alice_away")

	_, ok := r.GetUser("alice")
	assert.False(t, ok)

	u, ok := r.GetUser("alice_away")
	require.True(t, ok)
	assert.Equal(t, "alice_away", u.Nick)
	assert.Equal(t, []string{"alice_away", "bob"}, r.UsersIn("#go"))
}

func TestNickLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.GetOrCreateUser("Alice")

	u, ok := r.GetUser("aLiCe")
	require.True(t, ok)
	assert.Equal(t, "Alice", u.Nick)
}

func TestRemoveUserDropsAllMemberships(t *testing.T) {
	r := NewRegistry()
	r.AddMembership("alice", "#go")
	r.AddMembership("alice", "#rust")

	r.RemoveUser("alice")

	assert.Empty(t, r.UsersIn("#go"))
	assert.Empty(t, r.UsersIn("#rust"))
}

func TestChannelKeyAndTopic(t *testing.T) {
	r := NewRegistry()
	r.SetChannelKey("#secret", "hunter2")
	r.SetTopic("#secret", "members only")

	c, ok := r.GetChannel("#secret")
	require.True(t, ok)
	assert.Equal(t, "hunter2", c.Key)
	assert.Equal(t, "members only", c.Topic)
}

func TestSnapshotIsDetached(t *testing.T) {
	r := NewRegistry()
	r.AddMembership("alice", "#go")
	r.SetChannelKey("#go", "key")

	snap := r.Snapshot()

	// Mutations after the snapshot must not leak into it
	r.RemoveChannel("#go")
	r.RemoveUser("alice")

	require.Len(t, snap.Channels, 1)
	assert.Equal(t, "#go", snap.Channels[0].Name)
	assert.Equal(t, "key", snap.Channels[0].Key)
	assert.Equal(t, []string{"alice"}, snap.Channels[0].Members)
	require.Len(t, snap.Users, 1)
	assert.False(t, snap.TakenAt.IsZero())
}

func TestCloseClearsState(t *testing.T) {
	r := NewRegistry()
	r.AddMembership("alice", "#go")

	r.Close()

	assert.Empty(t, r.Channels())
	_, ok := r.GetUser("alice")
	assert.False(t, ok)

	// Registry stays usable after Close
	r.AddMembership("bob", "#new")
	assert.Equal(t, []string{"bob"}, r.UsersIn("#new"))
}

func TestConcurrentRenameAndLookup(t *testing.T) {
	r := NewRegistry()
	r.AddMembership("alice", "#go")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.RenameUser("alice", "alice")
		}()
		go func() {
			defer wg.Done()
			r.UsersIn("#go")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"alice"}, r.UsersIn("#go"))
}
