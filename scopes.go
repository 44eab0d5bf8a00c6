package store

// Scopes is the immutable table of scopes visible from one point in the
// tree: the scope itself plus every ancestor. The zero value is the empty
// table used by the vacant store.
type Scopes struct {
	order []string
	byID  map[string]*Store
}

// with composes the table handed to the descendants of s. It never mutates
// the receiver.
func (t Scopes) with(s *Store) (Scopes, error) {
	if s.id == "" {
		return Scopes{}, ErrScopeIDRequired
	}
	if _, exists := t.byID[s.id]; exists {
		return Scopes{}, &DuplicateScopeError{ID: s.id}
	}

	order := make([]string, 0, len(t.order)+1)
	order = append(order, t.order...)
	order = append(order, s.id)

	byID := make(map[string]*Store, len(t.byID)+1)
	for id, store := range t.byID {
		byID[id] = store
	}
	byID[s.id] = s

	return Scopes{order: order, byID: byID}, nil
}

// Lookup resolves the store backing id.
func (t Scopes) Lookup(id string) (*Store, error) {
	store, ok := t.byID[id]
	if !ok {
		return nil, &UnknownScopeError{ID: id}
	}
	return store, nil
}

// Has reports whether id is visible.
func (t Scopes) Has(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// Len returns the number of visible scopes.
func (t Scopes) Len() int {
	return len(t.order)
}

// IDs returns the visible identifiers from the root down.
func (t Scopes) IDs() []string {
	if len(t.order) == 0 {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// GetState resolves scopeID and reads key from it.
func (t Scopes) GetState(scopeID, key string) (Value, error) {
	store, err := t.Lookup(scopeID)
	if err != nil {
		return nil, err
	}
	return store.GetState(key)
}

// SetState resolves scopeID and writes key on it. valueOrUpdater follows
// Store.SetState.
func (t Scopes) SetState(scopeID, key string, valueOrUpdater Value) error {
	store, err := t.Lookup(scopeID)
	if err != nil {
		return err
	}
	return store.SetState(key, valueOrUpdater)
}

// Subscribe resolves scopeID and registers listener for key.
func (t Scopes) Subscribe(scopeID, key string, listener Listener) (*Subscription, error) {
	store, err := t.Lookup(scopeID)
	if err != nil {
		return nil, err
	}
	return store.AddStateChangeListener(key, listener)
}

// Snapshots captures the values of every visible scope from the root down.
func (t Scopes) Snapshots() []Snapshot {
	if len(t.order) == 0 {
		return nil
	}
	out := make([]Snapshot, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id].Snapshot())
	}
	return out
}

// values returns id -> detached values for every visible scope.
func (t Scopes) values() map[string]map[string]any {
	out := make(map[string]map[string]any, len(t.byID))
	for id, store := range t.byID {
		out[id] = store.valuesCopy()
	}
	return out
}
