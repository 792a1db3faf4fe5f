package busdesc

import (
	"testing"

	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/trace"
	"github.com/stretchr/testify/assert"
)

func TestReadyValidBus_Classify(t *testing.T) {
	b := NewReadyValidBus(trace.SignalPath{Name: "ready"}, trace.SignalPath{Name: "valid"})
	cases := []struct {
		ready, valid int
		want         period.CycleType
	}{
		{1, 1, period.Busy},
		{0, 0, period.Free},
		{1, 0, period.NoData},
		{0, 1, period.Backpressure},
	}
	for _, c := range cases {
		got := b.Classify([]trace.Value{trace.Bit(c.ready), trace.Bit(c.valid)}, 0, diag.NopSink{}, "b")
		assert.Equal(t, c.want, got)
	}
}

func TestCreditValidBus_Classify(t *testing.T) {
	b := NewCreditValidBus(trace.SignalPath{Name: "credit"}, trace.SignalPath{Name: "valid"})

	// no credits yet, no valid -> NoTransaction
	assert.Equal(t, period.NoTransaction, b.Classify([]trace.Value{trace.Bit(0), trace.Bit(0)}, 0, diag.NopSink{}, "b"))
	// credit arrives, not consumed this cycle (valid low) -> Free
	assert.Equal(t, period.Free, b.Classify([]trace.Value{trace.Bit(1), trace.Bit(0)}, 1, diag.NopSink{}, "b"))
	// one credit outstanding, valid fires -> Busy, consumes the credit
	assert.Equal(t, period.Busy, b.Classify([]trace.Value{trace.Bit(0), trace.Bit(1)}, 2, diag.NopSink{}, "b"))
	// back to zero credits, valid fires anyway -> Busy + warning, not fatal
	assert.Equal(t, period.Busy, b.Classify([]trace.Value{trace.Bit(0), trace.Bit(1)}, 3, diag.NopSink{}, "b"))
}

func TestAHBBus_Classify(t *testing.T) {
	b := NewAHBBus(trace.SignalPath{Name: "htrans"}, trace.SignalPath{Name: "hready"})
	cases := []struct {
		name   string
		htrans trace.Value
		hready trace.Value
		want   period.CycleType
	}{
		{"SEQ+ready", trace.Bits(1, 1), trace.Bit(1), period.Busy},
		{"NOSEQ+ready", trace.Bits(1, 0), trace.Bit(1), period.Busy},
		{"IDLE+ready", trace.Bits(0, 0), trace.Bit(1), period.Free},
		{"BUSY+ready", trace.Bits(0, 1), trace.Bit(1), period.NoData},
		{"IDLE+notready", trace.Bits(0, 0), trace.Bit(0), period.Backpressure},
		{"SEQ+notready", trace.Bits(1, 1), trace.Bit(0), period.Backpressure},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := b.Classify([]trace.Value{c.htrans, c.hready}, 0, diag.NopSink{}, "b")
			assert.Equal(t, c.want, got)
		})
	}
}

func TestAPBBus_Classify(t *testing.T) {
	b := NewAPBBus(trace.SignalPath{Name: "psel"}, trace.SignalPath{Name: "penable"}, trace.SignalPath{Name: "pready"})
	cases := []struct {
		psel, penable, pready int
		want                  period.CycleType
	}{
		{0, 0, 0, period.Free},
		{1, 0, 0, period.Busy},
		{1, 1, 0, period.Backpressure},
		{1, 1, 1, period.Busy},
	}
	for _, c := range cases {
		got := b.Classify([]trace.Value{trace.Bit(c.psel), trace.Bit(c.penable), trace.Bit(c.pready)}, 0, diag.NopSink{}, "b")
		assert.Equal(t, c.want, got)
	}
}
