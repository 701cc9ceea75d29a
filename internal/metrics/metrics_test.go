package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCommandsReceivedIncrementsByLabel(t *testing.T) {
	CommandsReceived.Reset()

	CommandsReceived.WithLabelValues("NEXT_SONG").Inc()
	CommandsReceived.WithLabelValues("NEXT_SONG").Inc()
	CommandsReceived.WithLabelValues("TOGGLE_PLAY").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(CommandsReceived.WithLabelValues("NEXT_SONG")))
	assert.Equal(t, float64(1), testutil.ToFloat64(CommandsReceived.WithLabelValues("TOGGLE_PLAY")))
}

func TestConnectionsActiveGauge(t *testing.T) {
	ConnectionsActive.Set(0)

	ConnectionsActive.Inc()
	ConnectionsActive.Inc()
	assert.Equal(t, float64(2), testutil.ToFloat64(ConnectionsActive))

	ConnectionsActive.Dec()
	assert.Equal(t, float64(1), testutil.ToFloat64(ConnectionsActive))
}

func TestOracleAdvancesByOutcome(t *testing.T) {
	OracleAdvances.Reset()

	OracleAdvances.WithLabelValues("item").Inc()
	OracleAdvances.WithLabelValues("exhausted").Inc()
	OracleAdvances.WithLabelValues("exhausted").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(OracleAdvances.WithLabelValues("item")))
	assert.Equal(t, float64(2), testutil.ToFloat64(OracleAdvances.WithLabelValues("exhausted")))
}
