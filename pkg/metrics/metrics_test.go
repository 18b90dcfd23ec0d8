package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaugeRoundTrip(t *testing.T) {
	require.NoError(t, InitMetrics(""))
	t.Cleanup(func() { _ = Close() })

	start := time.Now().Add(-time.Minute)
	SetGauge("ledger_net_balance", 22000)

	points, err := Query("ledger_net_balance", start, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, int64(22000), points[0].Value)
}

func TestQueryUnknownMetric(t *testing.T) {
	require.NoError(t, InitMetrics(""))
	t.Cleanup(func() { _ = Close() })

	points, err := Query("does_not_exist", time.Now().Add(-time.Hour), time.Now())
	assert.NoError(t, err)
	assert.Empty(t, points)
}

func TestSetGaugeBeforeInit(t *testing.T) {
	_ = Close()
	SetGauge("ignored", 1)
	points, err := Query("ignored", time.Now().Add(-time.Hour), time.Now())
	assert.NoError(t, err)
	assert.Nil(t, points)
}
