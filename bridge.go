package store

import (
	"sync"

	"github.com/goliatone/go-scoped-store/internal/jsonvalue"
)

// Binding ties a consumer to one key of a visible scope. It holds the last
// observed value and a setter, and keeps its subscription until Close.
type Binding struct {
	store    *Store
	key      string
	onChange func(Value)

	mu    sync.RWMutex
	value Value
	sub   *Subscription
}

// BindOption configures a Binding.
type BindOption func(*Binding)

// WithOnChange installs a callback invoked after the binding's value has
// been refreshed. It plays the role of a re-render trigger.
func WithOnChange(fn func(Value)) BindOption {
	return func(b *Binding) {
		b.onChange = fn
	}
}

// ReadAndSubscribe resolves scopeID in scopes, reads key and subscribes to
// it in one step, so no write can slip between the read and the
// registration.
func ReadAndSubscribe(scopes Scopes, scopeID, key string, opts ...BindOption) (*Binding, error) {
	target, err := scopes.Lookup(scopeID)
	if err != nil {
		return nil, err
	}

	b := &Binding{store: target, key: key}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	sub, value, err := target.subscribe(key, b.receive)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.value = value
	b.sub = sub
	b.mu.Unlock()
	return b, nil
}

// Observe is the scoped form of ReadAndSubscribe: fn runs with an open
// binding, which is closed when fn returns or panics.
func Observe(scopes Scopes, scopeID, key string, fn func(*Binding) error, opts ...BindOption) error {
	b, err := ReadAndSubscribe(scopes, scopeID, key, opts...)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}

func (b *Binding) receive(value Value) {
	b.mu.Lock()
	b.value = value
	b.mu.Unlock()
	if b.onChange != nil {
		b.onChange(jsonvalue.Clone(value))
	}
}

// Value returns the last value observed for the key.
func (b *Binding) Value() Value {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return jsonvalue.Clone(b.value)
}

// Key returns the bound key.
func (b *Binding) Key() string {
	return b.key
}

// Scope returns the id of the bound scope.
func (b *Binding) Scope() string {
	return b.store.ID()
}

// Set writes through to the owning store.
func (b *Binding) Set(valueOrUpdater Value) error {
	return b.store.SetState(b.key, valueOrUpdater)
}

// Update applies fn through the owning store.
func (b *Binding) Update(fn Updater) error {
	return b.store.UpdateState(b.key, fn)
}

// Close removes the binding's listener. It is idempotent. The last value
// remains readable.
func (b *Binding) Close() {
	b.mu.Lock()
	sub := b.sub
	b.sub = nil
	b.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}
