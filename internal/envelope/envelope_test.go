package envelope

import (
	"bytes"
	"testing"

	"github.com/busperf/busperf/internal/bususage"
	"github.com/busperf/busperf/internal/trace"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_RoundTrip(t *testing.T) {
	usage := bususage.NewSingleChannelBusUsage("apb0", 0, 2)
	usage.AddCycle(0) // Busy

	e := New("/traces/run1.vcd", "deadbeef", []BusResult{
		{
			ID:      xid.New(),
			Usage:   bususage.BusUsage{Kind: bususage.KindSingleChannel, SingleChannel: usage},
			Signals: []trace.SignalPath{{Scope: []string{"top"}, Name: "ready"}},
		},
	})

	var buf bytes.Buffer
	_, err := e.WriteTo(&buf)
	require.NoError(t, err)

	got, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, e.RunID, got.RunID)
	assert.Equal(t, e.TracePath, got.TracePath)
	assert.Equal(t, e.TraceHash, got.TraceHash)
	require.Len(t, got.Buses, 1)
	assert.Equal(t, e.Buses[0].ID, got.Buses[0].ID)
	assert.Equal(t, e.Buses[0].Signals, got.Buses[0].Signals)
	require.NotNil(t, got.Buses[0].Usage.SingleChannel)
	assert.Equal(t, "apb0", got.Buses[0].Usage.SingleChannel.BusName)
	assert.Equal(t, 1, got.Buses[0].Usage.SingleChannel.Busy)
}
