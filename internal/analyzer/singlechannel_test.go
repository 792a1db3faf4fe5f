package analyzer

import (
	"testing"

	"github.com/busperf/busperf/internal/busdesc"
	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyValidFixture() (clk, reset, ready, valid trace.MemChangeStream, table trace.TimeTable) {
	clk = trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(0)},
		{Time: 1, Value: trace.Bit(1)},
		{Time: 2, Value: trace.Bit(0)},
		{Time: 3, Value: trace.Bit(1)},
		{Time: 4, Value: trace.Bit(0)},
		{Time: 5, Value: trace.Bit(1)},
		{Time: 6, Value: trace.Bit(0)},
		{Time: 7, Value: trace.Bit(1)},
	}
	reset = trace.MemChangeStream{{Time: 0, Value: trace.Bit(0)}}
	ready = trace.MemChangeStream{{Time: 0, Value: trace.Bit(1)}}
	valid = trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(1)},
		{Time: 3, Value: trace.Bit(0)},
	}
	table = trace.TimeTable{0, 1, 2, 3, 4, 5, 6, 7, 8}
	return
}

func TestSingleChannelAnalyzer_Run(t *testing.T) {
	clk, reset, ready, valid, table := readyValidFixture()
	bus := busdesc.NewReadyValidBus(trace.SignalPath{Name: "ready"}, trace.SignalPath{Name: "valid"})

	a := &SingleChannelAnalyzer{
		Name: "apb0",
		ClockReset: ClockReset{
			Clock:           clk,
			Reset:           reset,
			ResetActiveHigh: true,
			TimeTable:       table,
		},
		Classifier: bus,
		Signals:    []trace.ChangeStream{ready, valid},
		Diag:       diag.NopSink{},
	}

	usage, err := a.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Busy)
	assert.Equal(t, 2, usage.NoData)
	assert.Equal(t, 0, usage.Reset)
}

func TestSingleChannelAnalyzer_Reset(t *testing.T) {
	clk, _, ready, valid, table := readyValidFixture()
	reset := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(0)},
		{Time: 2, Value: trace.Bit(1)}, // reset active from t=2 onward
	}
	bus := busdesc.NewReadyValidBus(trace.SignalPath{Name: "ready"}, trace.SignalPath{Name: "valid"})

	a := &SingleChannelAnalyzer{
		Name: "apb0",
		ClockReset: ClockReset{
			Clock:           clk,
			Reset:           reset,
			ResetActiveHigh: true,
			TimeTable:       table,
		},
		Classifier: bus,
		Signals:    []trace.ChangeStream{ready, valid},
		Diag:       diag.NopSink{},
	}

	usage, err := a.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, usage.Busy) // only the rising edge at t=1 precedes reset
	assert.Equal(t, 3, usage.Reset)
}

func TestSingleChannelAnalyzer_IntervalFiltering(t *testing.T) {
	clk, reset, ready, valid, table := readyValidFixture()
	bus := busdesc.NewReadyValidBus(trace.SignalPath{Name: "ready"}, trace.SignalPath{Name: "valid"})

	a := &SingleChannelAnalyzer{
		Name: "apb0",
		ClockReset: ClockReset{
			Clock:           clk,
			Reset:           reset,
			ResetActiveHigh: true,
			Intervals:       [][2]uint64{{0, 2}},
			TimeTable:       table,
		},
		Classifier: bus,
		Signals:    []trace.ChangeStream{ready, valid},
		Diag:       diag.NopSink{},
	}

	usage, err := a.Run()
	require.NoError(t, err)
	// Only the rising edge at t=1 (Busy) falls within [0,2]; t=3,5,7 fall outside.
	assert.Equal(t, 1, usage.Busy)
	assert.Equal(t, 0, usage.NoData)
	assert.Equal(t, 1, usage.TotalCycles())
}
