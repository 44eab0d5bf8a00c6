package store

// DefaultRootID is the conventional identifier of the process-wide root
// scope.
const DefaultRootID = "Global"

// Bootstrap enters the root scope. It must run before any descendant refers
// to the root by identifier.
func Bootstrap(id string, initial State, opts ...Option) (*Store, error) {
	return EnterScope(nil, id, initial, opts...)
}

// EnterScope creates the store for a subtree mounted under parent. The new
// store sees parent and all of parent's ancestors; parent's options are
// inherited and opts are applied on top. A nil parent is treated like the
// vacant store.
func EnterScope(parent *Store, id string, initial State, opts ...Option) (*Store, error) {
	base := defaultConfig()
	var visible Scopes
	if parent != nil {
		if parent.Closed() {
			return nil, ErrStoreClosed
		}
		base = parent.cfg
		visible = parent.scopes
	}
	return newStore(id, initial, visible, applyOptions(base, opts))
}

// ExitScope closes s. It exists as the counterpart of EnterScope.
func ExitScope(s *Store) {
	if s == nil {
		return
	}
	s.Close()
}
