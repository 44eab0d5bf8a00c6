// Package metrics exports store activity as Prometheus metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "store").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// Collector counts scope lifecycle events, writes and notifications. It
// satisfies the store Observer interface:
//
//	collector := metrics.NewCollector()
//	_ = collector.Register(prometheus.DefaultRegisterer)
//	root, _ := store.Bootstrap("Global", initial, store.WithObserver(collector))
type Collector struct {
	scopesEntered prometheus.Counter
	scopesExited  prometheus.Counter
	stateUpdates  *prometheus.CounterVec
	notifications *prometheus.CounterVec
	listeners     *prometheus.GaugeVec
}

// NewCollector builds an unregistered Collector.
func NewCollector(opts ...Option) *Collector {
	config := Config{Namespace: "store"}
	for _, opt := range opts {
		if opt != nil {
			opt(&config)
		}
	}

	return &Collector{
		scopesEntered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scopes_entered_total",
			Help:        "Total number of scopes entered",
			ConstLabels: config.ConstLabels,
		}),
		scopesExited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scopes_exited_total",
			Help:        "Total number of scopes exited",
			ConstLabels: config.ConstLabels,
		}),
		stateUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "state_updates_total",
			Help:        "Total number of state writes by scope and key",
			ConstLabels: config.ConstLabels,
		}, []string{"scope", "key"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of listener invocations by scope and key",
			ConstLabels: config.ConstLabels,
		}, []string{"scope", "key"}),
		listeners: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listeners",
			Help:        "Number of registered listeners by scope and key",
			ConstLabels: config.ConstLabels,
		}, []string{"scope", "key"}),
	}
}

// Register adds every metric to registerer. Metrics that are already
// registered are reported in the joined error.
func (c *Collector) Register(registerer prometheus.Registerer) error {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	var errs []error
	for _, collector := range c.collectors() {
		if err := registerer.Register(collector); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.scopesEntered,
		c.scopesExited,
		c.stateUpdates,
		c.notifications,
		c.listeners,
	}
}

// ScopeEntered implements store.Observer.
func (c *Collector) ScopeEntered(string) {
	c.scopesEntered.Inc()
}

// ScopeExited implements store.Observer. The store reports every listener
// it releases on exit through ListenerRemoved, so sibling scopes sharing an
// id keep their own gauge contributions.
func (c *Collector) ScopeExited(string) {
	c.scopesExited.Inc()
}

// StateUpdated implements store.Observer.
func (c *Collector) StateUpdated(scope, key string, listeners int) {
	c.stateUpdates.WithLabelValues(scope, key).Inc()
	if listeners > 0 {
		c.notifications.WithLabelValues(scope, key).Add(float64(listeners))
	}
}

// ListenerAdded implements store.Observer.
func (c *Collector) ListenerAdded(scope, key string) {
	c.listeners.WithLabelValues(scope, key).Inc()
}

// ListenerRemoved implements store.Observer.
func (c *Collector) ListenerRemoved(scope, key string) {
	c.listeners.WithLabelValues(scope, key).Dec()
}
