package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { MustRegister(reg) })

	before := testutil.ToFloat64(Runs.WithLabelValues("match"))
	Runs.WithLabelValues("match").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Runs.WithLabelValues("match")))

	assert.Panics(t, func() { MustRegister(reg) })
}
