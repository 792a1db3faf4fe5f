// Package analyzer drives the classifiers and iterators of the rest of the
// engine over a loaded trace.Source, producing a bususage.BusUsage per bus.
// Grounded on original_source/src/analyze/analyzer/default_analyzer.rs
// (single-channel) and original_source/src/analyze/analyzer/axi_analyzer.rs
// (AXI read/write).
package analyzer

import (
	"fmt"

	"github.com/busperf/busperf/internal/busdesc"
	"github.com/busperf/busperf/internal/bususage"
	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/trace"
)

// ClockReset bundles the clock/reset signals every analyzer needs, plus the
// reset polarity and the intervals to restrict analysis to.
type ClockReset struct {
	Clock           trace.ChangeStream
	Reset           trace.ChangeStream
	ResetActiveHigh bool
	Intervals       [][2]uint64
	TimeTable       trace.TimeTable
}

func (cr ClockReset) resetActive(v trace.Value) bool {
	bit := v.Bit()
	if cr.ResetActiveHigh {
		return bit == trace.ValueOne
	}
	return bit == trace.ValueZero
}

// insideIntervals reports whether the absolute time for idx falls inside at
// least one configured interval, or true if no intervals were configured
// (the whole trace is in scope).
func (cr ClockReset) insideIntervals(idx trace.TimeIndex) bool {
	if len(cr.Intervals) == 0 {
		return true
	}
	t := cr.TimeTable.At(idx)
	for _, iv := range cr.Intervals {
		if t >= iv[0] && t <= iv[1] {
			return true
		}
	}
	return false
}

// SingleChannelAnalyzer drives a busdesc.Classifier over every clock rising
// edge, producing a SingleChannelBusUsage (spec §4.3 step 1).
type SingleChannelAnalyzer struct {
	Name          string
	ClockReset    ClockReset
	Classifier    busdesc.Classifier
	Signals       []trace.ChangeStream
	MaxBurstDelay period.Cycles
	Diag          diag.Sink
}

// Run iterates the clock's rising edges, classifies each sampled cycle, and
// returns the accumulated usage.
func (a *SingleChannelAnalyzer) Run() (*bususage.SingleChannelBusUsage, error) {
	clockPeriod, err := a.ClockReset.TimeTable.ClockPeriod()
	if err != nil {
		return nil, fmt.Errorf("bus %q: %w", a.Name, err)
	}

	usage := bususage.NewSingleChannelBusUsage(a.Name, a.MaxBurstDelay, clockPeriod)

	for _, c := range a.ClockReset.Clock.Changes() {
		if c.Value.Bit() == trace.ValueZero {
			continue // skip falling/low edges; only rising edges drive sampling
		}
		if !a.ClockReset.insideIntervals(c.Time) {
			continue
		}
		sampleAt := c.Time
		if sampleAt > 0 {
			sampleAt--
		}

		resetVal := trace.SampleAt(a.ClockReset.Reset, sampleAt)
		if a.ClockReset.resetActive(resetVal) {
			usage.AddCycle(period.Reset)
			continue
		}

		samples := make([]trace.Value, len(a.Signals))
		for i, s := range a.Signals {
			samples[i] = trace.SampleAt(s, sampleAt)
		}
		t := a.Classifier.Classify(samples, sampleAt, a.Diag, a.Name)
		usage.AddCycle(t)
	}

	return usage, nil
}
