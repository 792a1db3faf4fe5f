// Package busdesc implements the per-cycle bus classifiers of spec §4.2:
// pure functions (or, for CreditValid, small per-bus state machines) from a
// cycle's sampled signal values to a period.CycleType.
package busdesc

import (
	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/trace"
)

// Classifier interprets one sampled cycle of a bus's control signals into a
// CycleType. Implementations that carry state (CreditValid) must never be
// shared across two analyzer runs of the same bus.
type Classifier interface {
	// Signals names, in the order Classify expects sampled values, the
	// control signals this classifier needs resolved from the trace.
	Signals() []trace.SignalPath
	// Classify interprets one cycle's sampled values, sampled at
	// time_index-1 per spec §4.2. time is the index the values were sampled
	// at (the rising edge's index minus one), used only for diagnostic
	// messages.
	Classify(samples []trace.Value, time trace.TimeIndex, warn diag.Sink, bus string) period.CycleType
}

func bit(v trace.Value) (int, bool) {
	switch v.Bit() {
	case trace.ValueZero:
		return 0, true
	case trace.ValueOne:
		return 1, true
	default:
		return 0, false
	}
}
