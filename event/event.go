// Package event defines the closed event taxonomy of the framework and the
// dispatch contract that routes each event to listeners.
//
// Every concrete event variant implements the sealed dispatch method, so the
// compiler enforces that a dispatch path exists for each variant: adding an
// event type without wiring it into the Listener interface is a build error.
// Capability tags are plain interfaces (GenericMessage, GenericChannel, ...)
// that variants satisfy structurally; Dispatch invokes the tag handler for
// every tag an event satisfies, exactly once each.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies the bot instance an event originated from. Using a small
// interface here keeps the event package free of a dependency on the bot.
type Source interface {
	// BotID is the process-wide instance counter, diagnostics only
	BotID() int64
	// Nick is the bot's current nickname
	Nick() string
}

// Event is the closed interface satisfied by every concrete event variant.
// The unexported dispatch method seals the set: variants live in this package
// and each must route itself to its Listener entry point.
type Event interface {
	// Bot returns the originating bot instance
	Bot() Source
	// ID returns the unique id assigned at construction
	ID() uuid.UUID
	// Timestamp returns the creation time
	Timestamp() time.Time
	// Type returns the variant name, used for metrics and bridge subjects
	Type() string

	dispatch(l Listener) error
}

// Base carries the fields shared by all events. Embed it by value; events are
// immutable records and are never mutated after construction.
type Base struct {
	bot       Source
	id        uuid.UUID
	timestamp time.Time
}

// NewBase stamps a new event with its source, id and creation time
func NewBase(bot Source) Base {
	return Base{
		bot:       bot,
		id:        uuid.New(),
		timestamp: time.Now(),
	}
}

// Bot returns the originating bot instance
func (b Base) Bot() Source { return b.bot }

// ID returns the unique event id
func (b Base) ID() uuid.UUID { return b.id }

// Timestamp returns the event creation time
func (b Base) Timestamp() time.Time { return b.timestamp }

// Capability tags. A variant satisfies a tag by implementing its methods;
// Dispatch checks each tag with a type assertion.

// GenericMessage is satisfied by every message-bearing event
type GenericMessage interface {
	Event
	MessageText() string
	SenderNick() string
}

// GenericChannel is satisfied by every event scoped to a channel
type GenericChannel interface {
	Event
	ChannelName() string
}

// GenericUser is satisfied by every event caused by a specific user
type GenericUser interface {
	Event
	UserNick() string
}

// GenericChannelMode is satisfied by channel mode changes
type GenericChannelMode interface {
	Event
	ChannelName() string
	ModeChange() string
}

// GenericUserMode is satisfied by user mode changes
type GenericUserMode interface {
	Event
	TargetNick() string
	ModeChange() string
}
