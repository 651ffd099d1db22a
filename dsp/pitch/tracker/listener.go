package tracker

// Listener receives records as they are produced.
type Listener interface {
	PitchDetected(r Record)
}

// ListenerFunc adapts a function to [Listener].
type ListenerFunc func(r Record)

// PitchDetected calls f(r).
func (f ListenerFunc) PitchDetected(r Record) { f(r) }

// Handle identifies a registered listener. The zero Handle is never issued.
type Handle uint64

type subscription struct {
	handle   Handle
	listener Listener
}

// AddListener registers l and returns its handle. Listeners are called in
// registration order. A nil listener is ignored and yields the zero Handle.
func (t *Tracker) AddListener(l Listener) Handle {
	if l == nil {
		return 0
	}

	t.lastHandle++

	subs := make([]subscription, len(t.subs), len(t.subs)+1)
	copy(subs, t.subs)
	t.subs = append(subs, subscription{handle: t.lastHandle, listener: l})

	return t.lastHandle
}

// AddListenerFunc registers fn as a listener.
func (t *Tracker) AddListenerFunc(fn func(Record)) Handle {
	if fn == nil {
		return 0
	}

	return t.AddListener(ListenerFunc(fn))
}

// RemoveListener unregisters the listener behind h and reports whether it
// was registered. A record being dispatched still reaches it.
func (t *Tracker) RemoveListener(h Handle) bool {
	for i, s := range t.subs {
		if s.handle != h {
			continue
		}

		subs := make([]subscription, 0, len(t.subs)-1)
		subs = append(subs, t.subs[:i]...)
		t.subs = append(subs, t.subs[i+1:]...)

		return true
	}

	return false
}

// NumListeners returns the number of registered listeners.
func (t *Tracker) NumListeners() int {
	return len(t.subs)
}

func (t *Tracker) dispatch(r Record) {
	// t.subs is replaced, never mutated, so this range sees a stable list
	for _, s := range t.subs {
		s.listener.PitchDetected(r)
	}
}
