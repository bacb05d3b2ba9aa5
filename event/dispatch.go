package event

// Dispatch routes a single event to one listener: first the variant entry
// point, then every capability tag the event satisfies, each exactly once.
// The variant handler always runs before the tag handlers, and there is no
// ordering guarantee between tag handlers beyond the fixed check order here.
//
// A handler error stops the current dispatch and propagates to the caller;
// it never corrupts dispatch state for other listeners or later events.
// A nil event is ignored silently.
func Dispatch(l Listener, e Event) error {
	if e == nil {
		return nil
	}

	if err := e.dispatch(l); err != nil {
		return err
	}

	if ge, ok := e.(GenericMessage); ok {
		if err := l.OnGenericMessage(ge); err != nil {
			return err
		}
	}
	if ge, ok := e.(GenericChannel); ok {
		if err := l.OnGenericChannel(ge); err != nil {
			return err
		}
	}
	if ge, ok := e.(GenericUser); ok {
		if err := l.OnGenericUser(ge); err != nil {
			return err
		}
	}
	if ge, ok := e.(GenericChannelMode); ok {
		if err := l.OnGenericChannelMode(ge); err != nil {
			return err
		}
	}
	if ge, ok := e.(GenericUserMode); ok {
		if err := l.OnGenericUserMode(ge); err != nil {
			return err
		}
	}

	return nil
}
