package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func metricValue(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("metric Write() error: %v", err)
	}
	switch {
	case out.Counter != nil:
		return out.GetCounter().GetValue()
	case out.Gauge != nil:
		return out.GetGauge().GetValue()
	default:
		t.Fatalf("unexpected metric type: %v", out.String())
		return 0
	}
}

func TestCollectorCountsLifecycle(t *testing.T) {
	c := NewCollector()

	c.ScopeEntered("Global")
	c.ScopeEntered("A")
	c.ScopeExited("A")

	if got := metricValue(t, c.scopesEntered); got != 2 {
		t.Fatalf("expected 2 entered scopes, got %v", got)
	}
	if got := metricValue(t, c.scopesExited); got != 1 {
		t.Fatalf("expected 1 exited scope, got %v", got)
	}
}

func TestCollectorCountsUpdatesAndNotifications(t *testing.T) {
	c := NewCollector()

	c.StateUpdated("Global", "foo", 2)
	c.StateUpdated("Global", "foo", 0)

	if got := metricValue(t, c.stateUpdates.WithLabelValues("Global", "foo")); got != 2 {
		t.Fatalf("expected 2 updates, got %v", got)
	}
	if got := metricValue(t, c.notifications.WithLabelValues("Global", "foo")); got != 2 {
		t.Fatalf("expected 2 notifications, got %v", got)
	}
}

func TestCollectorTracksListeners(t *testing.T) {
	c := NewCollector()

	c.ListenerAdded("A", "bar")
	c.ListenerAdded("A", "bar")
	c.ListenerRemoved("A", "bar")
	if got := metricValue(t, c.listeners.WithLabelValues("A", "bar")); got != 1 {
		t.Fatalf("expected 1 listener, got %v", got)
	}

	c.ListenerAdded("A", "baz")
	c.ScopeExited("A")
	if got := metricValue(t, c.listeners.WithLabelValues("A", "baz")); got != 1 {
		t.Fatalf("exit alone must not touch listener gauges, got %v", got)
	}
}

func TestCollectorRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(WithNamespace("app"), WithSubsystem("state"))
	if err := c.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	c.ScopeEntered("Global")
	c.StateUpdated("Global", "foo", 1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, want := range []string{"app_state_scopes_entered_total", "app_state_state_updates_total", "app_state_notifications_total"} {
		if !names[want] {
			t.Fatalf("expected %s in %v", want, names)
		}
	}

	if err := c.Register(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
