package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-scoped-store/internal/jsonvalue"
)

var (
	errNilListener = errors.New("store: listener must not be nil")
	errNilUpdater  = errors.New("store: updater must not be nil")
)

// Store is one named scope: a fixed set of keys, their current values, the
// listeners registered per key and the table of scopes visible from here.
//
// Writes notify listeners synchronously, in registration order, before
// SetState returns. The internal lock is never held while listeners or
// updaters run, so both may call back into the store.
type Store struct {
	id       string
	instance string
	scopes   Scopes
	cfg      storeConfig

	mu        sync.RWMutex
	values    map[string]Value
	listeners map[string]*listenerSet
	nextID    ListenerID
	closed    bool
}

// New builds a store for scope id on top of the parent's visible table. It
// fails with a DuplicateScopeError when id is already visible and never
// replaces the existing scope.
func New(id string, initial State, parent Scopes, opts ...Option) (*Store, error) {
	return newStore(id, initial, parent, applyOptions(defaultConfig(), opts))
}

// Vacant returns the structural root: no id, no keys and an empty visible
// table. Lookups through it fail with UnknownScopeError.
func Vacant() *Store {
	return &Store{
		cfg:       defaultConfig(),
		values:    map[string]Value{},
		listeners: map[string]*listenerSet{},
	}
}

func newStore(id string, initial State, parent Scopes, cfg storeConfig) (store *Store, err error) {
	s := &Store{
		id:       id,
		instance: uuid.NewString(),
		cfg:      cfg,
	}
	for _, regErr := range cfg.registerErrs {
		cfg.logger.LogEvent(LogEvent{Op: OpRegister, Scope: id, Err: regErr})
	}
	s.cfg.registerErrs = nil

	span := s.startSpan("store.enter")
	start := time.Now()
	defer func() {
		endSpan(span, err)
		s.cfg.logger.LogEvent(LogEvent{Op: OpEnter, Scope: id, Duration: time.Since(start), Err: err})
	}()

	scopes, err := parent.with(s)
	if err != nil {
		return nil, err
	}
	values, err := normalizeState(id, initial)
	if err != nil {
		return nil, err
	}

	s.scopes = scopes
	s.values = values
	s.listeners = make(map[string]*listenerSet, len(values))
	for key := range values {
		s.listeners[key] = &listenerSet{}
	}

	s.cfg.observer.ScopeEntered(id)
	s.emitScopeEntered()
	return s, nil
}

// ID returns the scope identifier. It is empty for the vacant store.
func (s *Store) ID() string {
	return s.id
}

// Instance returns the unique id assigned when the scope was entered.
func (s *Store) Instance() string {
	return s.instance
}

// Scopes returns the visible table handed to descendants.
func (s *Store) Scopes() Scopes {
	return s.scopes
}

// Lookup resolves a visible scope by id.
func (s *Store) Lookup(id string) (*Store, error) {
	return s.scopes.Lookup(id)
}

// Keys returns the declared keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key was declared.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// ListenerCount returns the number of listeners registered for key.
func (s *Store) ListenerCount(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listeners[key].len()
}

// GetState returns the current value of key. Composite values are copies.
func (s *Store) GetState(key string) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, s.undefined(key)
	}
	return jsonvalue.Clone(value), nil
}

// SetState stores a new value for key and notifies its listeners before
// returning. valueOrUpdater is either a Value or an Updater (a plain
// func(Value) Value also works), in which case it is called once with the
// current value. A nil updater fails without storing or notifying.
func (s *Store) SetState(key string, valueOrUpdater Value) (err error) {
	span := s.startSpan("store.set", attrKey.String(key))
	start := time.Now()
	notified := 0
	defer func() {
		span.SetAttributes(attrListeners.Int(notified))
		endSpan(span, err)
		s.cfg.logger.LogEvent(LogEvent{
			Op:        OpSet,
			Scope:     s.id,
			Key:       key,
			Listeners: notified,
			Duration:  time.Since(start),
			Err:       err,
		})
	}()

	s.mu.RLock()
	prev, ok := s.values[key]
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrStoreClosed
	}
	if !ok {
		return s.undefined(key)
	}

	resolved, err := resolveUpdate(prev, valueOrUpdater)
	if err != nil {
		return err
	}
	next, err := jsonvalue.Normalize(resolved)
	if err != nil {
		return invalidValue(s.id, key, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	prev = s.values[key]
	s.values[key] = next
	entries := s.listeners[key].snapshot()
	s.mu.Unlock()

	for _, entry := range entries {
		entry.fn(jsonvalue.Clone(next))
		notified++
	}

	s.cfg.observer.StateUpdated(s.id, key, notified)
	s.emitStateUpdated(key, prev, next, notified)
	return nil
}

// UpdateState applies fn to the current value of key.
func (s *Store) UpdateState(key string, fn Updater) error {
	if fn == nil {
		return errNilUpdater
	}
	return s.SetState(key, fn)
}

// AddStateChangeListener registers listener for key. Listeners are not
// de-duplicated by callback: registering the same function twice adds a
// second entry with its own handle, and it is called twice per write. Use
// the returned Subscription, or RemoveStateChangeListener with its ID, to
// remove exactly one entry.
func (s *Store) AddStateChangeListener(key string, listener Listener) (*Subscription, error) {
	sub, _, err := s.subscribe(key, listener)
	return sub, err
}

// RemoveStateChangeListener unregisters the listener with handle id. Unknown
// keys and handles are ignored. A broadcast already in progress still
// reaches the removed listener.
func (s *Store) RemoveStateChangeListener(key string, id ListenerID) {
	s.mu.Lock()
	set := s.listeners[key]
	removed := set != nil && set.remove(id)
	s.mu.Unlock()
	if !removed {
		return
	}
	s.cfg.observer.ListenerRemoved(s.id, key)
	s.cfg.logger.LogEvent(LogEvent{Op: OpUnsubscribe, Scope: s.id, Key: key})
}

// subscribe registers listener and returns the value observed at the same
// instant.
func (s *Store) subscribe(key string, listener Listener) (*Subscription, Value, error) {
	if listener == nil {
		return nil, nil, errNilListener
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil, ErrStoreClosed
	}
	value, ok := s.values[key]
	if !ok {
		s.mu.Unlock()
		err := s.undefined(key)
		s.cfg.logger.LogEvent(LogEvent{Op: OpSubscribe, Scope: s.id, Key: key, Err: err})
		return nil, nil, err
	}
	set := s.listeners[key]
	if set == nil {
		set = &listenerSet{}
		s.listeners[key] = set
	}
	s.nextID++
	id := s.nextID
	set.add(id, listener)
	value = jsonvalue.Clone(value)
	s.mu.Unlock()

	s.cfg.observer.ListenerAdded(s.id, key)
	s.cfg.logger.LogEvent(LogEvent{Op: OpSubscribe, Scope: s.id, Key: key})
	return &Subscription{store: s, key: key, id: id}, value, nil
}

// Close exits the scope: listener sets are released, each released listener
// is reported to the observer, and later writes or subscriptions fail with
// ErrStoreClosed. Reads keep working. Close is
// idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed || s.id == "" {
		s.mu.Unlock()
		return
	}
	s.closed = true
	released := make(map[string]int, len(s.listeners))
	for key, set := range s.listeners {
		if n := set.len(); n > 0 {
			released[key] = n
		}
		s.listeners[key] = nil
	}
	s.mu.Unlock()

	span := s.startSpan("store.exit")
	endSpan(span, nil)
	keys := make([]string, 0, len(released))
	for key := range released {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for i := 0; i < released[key]; i++ {
			s.cfg.observer.ListenerRemoved(s.id, key)
		}
	}
	s.cfg.observer.ScopeExited(s.id)
	s.emitScopeExited()
	s.cfg.logger.LogEvent(LogEvent{Op: OpExit, Scope: s.id})
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store) parents() []string {
	ids := s.scopes.IDs()
	if len(ids) == 0 {
		return nil
	}
	return ids[:len(ids)-1]
}

func (s *Store) valuesCopy() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for key, value := range s.values {
		out[key] = jsonvalue.Clone(value)
	}
	return out
}

func (s *Store) undefined(key string) error {
	return &UndefinedStateError{Scope: s.id, Key: key}
}
