package store

// Observer receives structural notifications about scopes and listeners.
// Implementations must not call back into the store that notified them.
type Observer interface {
	ScopeEntered(scope string)
	ScopeExited(scope string)
	StateUpdated(scope, key string, listeners int)
	ListenerAdded(scope, key string)
	ListenerRemoved(scope, key string)
}

type noopObserver struct{}

func (noopObserver) ScopeEntered(string)              {}
func (noopObserver) ScopeExited(string)               {}
func (noopObserver) StateUpdated(string, string, int) {}
func (noopObserver) ListenerAdded(string, string)     {}
func (noopObserver) ListenerRemoved(string, string)   {}

// WithObserver attaches an observer, such as metrics.Collector.
func WithObserver(observer Observer) Option {
	return func(cfg *storeConfig) {
		if observer == nil {
			cfg.observer = noopObserver{}
			return
		}
		cfg.observer = observer
	}
}
