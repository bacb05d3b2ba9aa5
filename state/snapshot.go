package state

import "time"

// ChannelSnapshot is an immutable copy of a channel and its members
type ChannelSnapshot struct {
	Name    string
	Key     string
	Topic   string
	Members []string
}

// Snapshot is an immutable copy of the registry taken at a point in time.
// It is attached to disconnect events for diagnostics and used to replay
// joins after a reconnect.
type Snapshot struct {
	TakenAt  time.Time
	Users    []User
	Channels []ChannelSnapshot
}

// Snapshot copies the registry under its lock
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := &Snapshot{TakenAt: time.Now()}

	snap.Users = make([]User, 0, len(r.users))
	for _, u := range r.users {
		snap.Users = append(snap.Users, *u)
	}

	snap.Channels = make([]ChannelSnapshot, 0, len(r.channels))
	for name, c := range r.channels {
		cs := ChannelSnapshot{Name: c.Name, Key: c.Key, Topic: c.Topic}
		for m := range r.membership[name] {
			if u, ok := r.users[m]; ok {
				cs.Members = append(cs.Members, u.Nick)
			}
		}
		snap.Channels = append(snap.Channels, cs)
	}

	return snap
}
