package store

import "sync"

// Listener receives the new value of a key after every write.
type Listener func(value Value)

// ListenerID is the stable handle returned when a listener is registered.
// Listener identity is the handle, never the callback itself.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// listenerSet keeps listeners in registration order. Removal replaces the
// backing slice so snapshots taken for an in-flight broadcast stay intact.
type listenerSet struct {
	entries []listenerEntry
}

func (s *listenerSet) add(id ListenerID, fn Listener) {
	s.entries = append(s.entries, listenerEntry{id: id, fn: fn})
}

func (s *listenerSet) remove(id ListenerID) bool {
	for i, entry := range s.entries {
		if entry.id != id {
			continue
		}
		next := make([]listenerEntry, 0, len(s.entries)-1)
		next = append(next, s.entries[:i]...)
		next = append(next, s.entries[i+1:]...)
		s.entries = next
		return true
	}
	return false
}

func (s *listenerSet) snapshot() []listenerEntry {
	if s == nil {
		return nil
	}
	return s.entries[:len(s.entries):len(s.entries)]
}

func (s *listenerSet) len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Subscription is the handle for one registered listener.
type Subscription struct {
	store *Store
	key   string
	id    ListenerID
	once  sync.Once
}

// ID returns the listener handle.
func (s *Subscription) ID() ListenerID {
	if s == nil {
		return 0
	}
	return s.id
}

// Key returns the subscribed key.
func (s *Subscription) Key() string {
	if s == nil {
		return ""
	}
	return s.key
}

// Unsubscribe removes the listener. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.store == nil {
		return
	}
	s.once.Do(func() {
		s.store.RemoveStateChangeListener(s.key, s.id)
	})
}
