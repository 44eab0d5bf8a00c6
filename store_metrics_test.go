package store

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-scoped-store/pkg/metrics"
)

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) (float64, bool) {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metric:
		for _, m := range family.GetMetric() {
			got := map[string]string{}
			for _, pair := range m.GetLabel() {
				got[pair.GetName()] = pair.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue metric
				}
			}
			return m.GetGauge().GetValue(), true
		}
	}
	return 0, false
}

func TestSiblingScopesKeepSeparateListenerGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector()
	require.NoError(t, collector.Register(reg))

	global, err := Bootstrap("Global", State{}, WithObserver(collector))
	require.NoError(t, err)
	left, err := EnterScope(global, "A", State{"k": 0})
	require.NoError(t, err)
	right, err := EnterScope(global, "A", State{"k": 0})
	require.NoError(t, err)

	labels := map[string]string{"scope": "A", "key": "k"}

	_, err = left.AddStateChangeListener("k", func(Value) {})
	require.NoError(t, err)
	sub, err := right.AddStateChangeListener("k", func(Value) {})
	require.NoError(t, err)
	got, ok := gaugeValue(t, reg, "store_listeners", labels)
	require.True(t, ok)
	require.Equal(t, float64(2), got)

	left.Close()
	got, _ = gaugeValue(t, reg, "store_listeners", labels)
	require.Equal(t, float64(1), got, "closing one sibling must leave the other's listener counted")

	sub.Unsubscribe()
	got, _ = gaugeValue(t, reg, "store_listeners", labels)
	require.Equal(t, float64(0), got)
	require.Equal(t, 0, right.ListenerCount("k"))
}
