package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.OrdersCreated.Inc()
	m.Captures.WithLabelValues("captured").Inc()
	m.SweepRuns.WithLabelValues("ok").Add(2)

	expected := `
# HELP checkout_sweep_runs_total Expiration sweep cycles, by result.
# TYPE checkout_sweep_runs_total counter
checkout_sweep_runs_total{result="ok"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "checkout_sweep_runs_total"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OrdersCreated))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Captures)+testutil.CollectAndCount(m.OrdersCreated))
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}
