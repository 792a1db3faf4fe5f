package busdesc

import (
	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/trace"
)

// CreditValidBus classifies a credit/valid channel. It owns a running
// credits counter as a struct field rather than an interior-mutable cell
// (design note §9: stateful classifier isolation) — grounded on
// original_source/src/bus/credit_valid.rs's CreditValidBus, which keeps the
// same counter in a Cell<u32>.
//
// A CreditValidBus value must never be reused across two analyzer runs: its
// credits counter is the classifier's entire state.
type CreditValidBus struct {
	Credit  trace.SignalPath
	Valid   trace.SignalPath
	credits uint32
}

// NewCreditValidBus builds a fresh classifier with zero outstanding
// credits.
func NewCreditValidBus(credit, valid trace.SignalPath) *CreditValidBus {
	return &CreditValidBus{Credit: credit, Valid: valid}
}

// Signals implements Classifier.
func (b *CreditValidBus) Signals() []trace.SignalPath {
	return []trace.SignalPath{b.Credit, b.Valid}
}

// Classify implements Classifier. A credit=1 sample increments the running
// counter before the valid/credits decision is made, matching the original's
// ordering (increment first, then consume).
func (b *CreditValidBus) Classify(samples []trace.Value, time trace.TimeIndex, warn diag.Sink, bus string) period.CycleType {
	credit, creditOK := bit(samples[0])
	valid, validOK := bit(samples[1])
	if !creditOK || !validOK {
		warn.Warnf(bus, time, "credit/valid bus has non-binary value credit=%v valid=%v", samples[0].BitString(), samples[1].BitString())
		return period.Unknown
	}
	if credit == 1 {
		b.credits++
	}
	switch {
	case b.credits > 0 && valid == 1:
		b.credits--
		return period.Busy
	case b.credits > 0 && valid == 0:
		return period.Free
	case b.credits == 0 && valid == 1:
		warn.Warnf(bus, time, "credit is 0 and valid 1 on credit/valid bus")
		return period.Busy
	default: // credits == 0, valid == 0
		return period.NoTransaction
	}
}
