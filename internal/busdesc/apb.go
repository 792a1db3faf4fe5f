package busdesc

import (
	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/trace"
)

// APBBus classifies an APB bus from psel/penable/pready, grounded on
// original_source/src/analyze/bus/apb.rs.
type APBBus struct {
	PSel    trace.SignalPath
	PEnable trace.SignalPath
	PReady  trace.SignalPath
}

// NewAPBBus builds a classifier for an APB bus.
func NewAPBBus(psel, penable, pready trace.SignalPath) *APBBus {
	return &APBBus{PSel: psel, PEnable: penable, PReady: pready}
}

// Signals implements Classifier.
func (b *APBBus) Signals() []trace.SignalPath {
	return []trace.SignalPath{b.PSel, b.PEnable, b.PReady}
}

// Classify implements Classifier.
func (b *APBBus) Classify(samples []trace.Value, time trace.TimeIndex, warn diag.Sink, bus string) period.CycleType {
	psel, pselOK := bit(samples[0])
	penable, penableOK := bit(samples[1])
	pready, preadyOK := bit(samples[2])
	if !pselOK || !penableOK || !preadyOK {
		warn.Warnf(bus, time, "apb bus has non-binary value psel=%s penable=%s pready=%s", samples[0].BitString(), samples[1].BitString(), samples[2].BitString())
		return period.Unknown
	}
	switch {
	case psel == 0:
		return period.Free
	case psel == 1 && penable == 0:
		return period.Busy
	case psel == 1 && penable == 1 && pready == 0:
		return period.Backpressure
	case psel == 1 && penable == 1 && pready == 1:
		return period.Busy
	default:
		return period.Unknown
	}
}
