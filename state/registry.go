// Package state tracks the users and channels known to a bot for the
// lifetime of a connection. All mutation goes through a single lock so that
// a nickname rename and a concurrent lookup never interleave inconsistently.
package state

import (
	"sort"
	"strings"
	"sync"
)

// User is a user currently visible to the bot
type User struct {
	Nick     string
	Login    string
	Hostmask string
}

// Channel is a channel the bot has joined
type Channel struct {
	Name  string
	Key   string
	Topic string
}

// Registry is the shared identity/channel store for one bot instance.
// It is created on construction and cleared (not replaced) on shutdown so
// callers holding a reference never observe a nil registry.
type Registry struct {
	mu         sync.RWMutex
	users      map[string]*User    // lower nick -> user
	channels   map[string]*Channel // lower name -> channel
	membership map[string]map[string]struct{} // lower channel -> set of lower nicks
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		users:      make(map[string]*User),
		channels:   make(map[string]*Channel),
		membership: make(map[string]map[string]struct{}),
	}
}

func lower(s string) string { return strings.ToLower(s) }

// GetOrCreateUser returns the tracked user for nick, creating it if unknown
func (r *Registry) GetOrCreateUser(nick string) User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.getOrCreateUserLocked(nick)
}

func (r *Registry) getOrCreateUserLocked(nick string) *User {
	if u, ok := r.users[lower(nick)]; ok {
		return u
	}
	u := &User{Nick: nick}
	r.users[lower(nick)] = u
	return u
}

// GetUser looks up a user by nick
func (r *Registry) GetUser(nick string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[lower(nick)]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// SetUserDetails records login and hostmask for a user
func (r *Registry) SetUserDetails(nick, login, hostmask string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.getOrCreateUserLocked(nick)
	u.Login = login
	u.Hostmask = hostmask
}

// RenameUser moves a user to a new nick, keeping channel membership
func (r *Registry) RenameUser(oldNick, newNick string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.getOrCreateUserLocked(oldNick)
	delete(r.users, lower(oldNick))
	u.Nick = newNick
	r.users[lower(newNick)] = u

	for _, members := range r.membership {
		if _, ok := members[lower(oldNick)]; ok {
			delete(members, lower(oldNick))
			members[lower(newNick)] = struct{}{}
		}
	}
}

// RemoveUser drops a user and all its memberships (QUIT)
func (r *Registry) RemoveUser(nick string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, lower(nick))
	for _, members := range r.membership {
		delete(members, lower(nick))
	}
}

// GetOrCreateChannel returns the tracked channel, creating it if unknown
func (r *Registry) GetOrCreateChannel(name string) Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.getOrCreateChannelLocked(name)
}

func (r *Registry) getOrCreateChannelLocked(name string) *Channel {
	if c, ok := r.channels[lower(name)]; ok {
		return c
	}
	c := &Channel{Name: name}
	r.channels[lower(name)] = c
	if r.membership[lower(name)] == nil {
		r.membership[lower(name)] = make(map[string]struct{})
	}
	return c
}

// GetChannel looks up a channel by name
func (r *Registry) GetChannel(name string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.channels[lower(name)]
	if !ok {
		return Channel{}, false
	}
	return *c, true
}

// SetChannelKey records the key used to join a channel, replayed on rejoin
func (r *Registry) SetChannelKey(name, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getOrCreateChannelLocked(name).Key = key
}

// SetTopic records a channel topic
func (r *Registry) SetTopic(name, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getOrCreateChannelLocked(name).Topic = topic
}

// RemoveChannel drops a channel and its membership (bot PART/KICK)
func (r *Registry) RemoveChannel(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, lower(name))
	delete(r.membership, lower(name))
}

// AddMembership records that nick is present in channel
func (r *Registry) AddMembership(nick, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getOrCreateUserLocked(nick)
	r.getOrCreateChannelLocked(channel)
	r.membership[lower(channel)][lower(nick)] = struct{}{}
}

// RemoveMembership records that nick left channel
func (r *Registry) RemoveMembership(nick, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if members, ok := r.membership[lower(channel)]; ok {
		delete(members, lower(nick))
	}
}

// UsersIn returns the nicks currently in a channel, sorted
func (r *Registry) UsersIn(channel string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.membership[lower(channel)]
	if !ok {
		return nil
	}
	nicks := make([]string, 0, len(members))
	for m := range members {
		if u, ok := r.users[m]; ok {
			nicks = append(nicks, u.Nick)
		}
	}
	sort.Strings(nicks)
	return nicks
}

// Channels returns all currently joined channels
func (r *Registry) Channels() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Channel, 0, len(r.channels))
	for _, c := range r.channels {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close clears all tracked state. The registry stays usable afterwards for a
// fresh connection.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[string]*User)
	r.channels = make(map[string]*Channel)
	r.membership = make(map[string]map[string]struct{})
}
