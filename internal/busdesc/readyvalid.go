package busdesc

import (
	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/trace"
)

// ReadyValidBus classifies a single ready/valid handshake channel
// (spec §4.2), grounded on original_source/src/bus/axi.rs's AXIBus
// (the generic ready/valid classifier shared by every AXI channel and any
// plain ready-valid bus).
type ReadyValidBus struct {
	Ready trace.SignalPath
	Valid trace.SignalPath
}

// NewReadyValidBus builds a classifier for a ready/valid channel.
func NewReadyValidBus(ready, valid trace.SignalPath) *ReadyValidBus {
	return &ReadyValidBus{Ready: ready, Valid: valid}
}

// Signals implements Classifier.
func (b *ReadyValidBus) Signals() []trace.SignalPath {
	return []trace.SignalPath{b.Ready, b.Valid}
}

// Classify implements Classifier.
//
//	ready=1, valid=1 -> Busy
//	ready=0, valid=0 -> Free
//	ready=1, valid=0 -> NoData
//	ready=0, valid=1 -> Backpressure
func (b *ReadyValidBus) Classify(samples []trace.Value, time trace.TimeIndex, warn diag.Sink, bus string) period.CycleType {
	ready, readyOK := bit(samples[0])
	valid, validOK := bit(samples[1])
	if !readyOK || !validOK {
		warn.Warnf(bus, time, "ready/valid bus has non-binary value ready=%v valid=%v", samples[0].BitString(), samples[1].BitString())
		return period.Unknown
	}
	switch {
	case ready == 1 && valid == 1:
		return period.Busy
	case ready == 0 && valid == 0:
		return period.Free
	case ready == 1 && valid == 0:
		return period.NoData
	default: // ready == 0 && valid == 1
		return period.Backpressure
	}
}
