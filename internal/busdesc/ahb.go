package busdesc

import (
	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/trace"
)

// AHBBus classifies an AHB bus from its 2-bit htrans and its hready signal,
// grounded on original_source/src/bus/ahb.rs.
//
//	htrans: 00 IDLE, 01 BUSY, 10 NOSEQ, 11 SEQ
type AHBBus struct {
	HTrans trace.SignalPath
	HReady trace.SignalPath
}

// NewAHBBus builds a classifier for an AHB bus.
func NewAHBBus(htrans, hready trace.SignalPath) *AHBBus {
	return &AHBBus{HTrans: htrans, HReady: hready}
}

// Signals implements Classifier.
func (b *AHBBus) Signals() []trace.SignalPath {
	return []trace.SignalPath{b.HTrans, b.HReady}
}

// Classify implements Classifier.
func (b *AHBBus) Classify(samples []trace.Value, time trace.TimeIndex, warn diag.Sink, bus string) period.CycleType {
	htrans := samples[0]
	hready := samples[1]
	if len(htrans.Bits) != 2 || !htrans.Clean() {
		warn.Warnf(bus, time, "ahb bus outside reset has non-binary htrans=%s hready=%s", htrans.BitString(), hready.BitString())
		return period.Unknown
	}
	hreadyV, ok := bit(hready)
	if !ok {
		warn.Warnf(bus, time, "ahb bus outside reset has non-binary htrans=%s hready=%s", htrans.BitString(), hready.BitString())
		return period.Unknown
	}

	htransV := 0
	if htrans.Bits[0] == trace.ValueOne {
		htransV |= 0b10
	}
	if htrans.Bits[1] == trace.ValueOne {
		htransV |= 0b01
	}

	switch {
	case (htransV == 0b11 || htransV == 0b10) && hreadyV == 1:
		return period.Busy
	case htransV == 0b00 && hreadyV == 1:
		return period.Free
	case htransV == 0b01 && hreadyV == 1:
		return period.NoData
	case (htransV == 0b00 || htransV == 0b01) && hreadyV == 0:
		warn.Warnf(bus, time, "ahb bus in disallowed state htrans=%s hready=%s", htrans.BitString(), hready.BitString())
		return period.Backpressure
	case hreadyV == 0:
		return period.Backpressure
	default:
		warn.Warnf(bus, time, "ahb bus has invalid value htrans=%s hready=%s", htrans.BitString(), hready.BitString())
		return period.Unknown
	}
}
