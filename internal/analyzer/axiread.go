package analyzer

import (
	"fmt"
	"sort"

	"github.com/busperf/busperf/internal/bususage"
	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/trace"
	"github.com/shopspring/decimal"
)

// AXIChannel bundles a handshake pair (valid driven by the sender, ready
// driven by the receiver) for one AXI channel.
type AXIChannel struct {
	Valid trace.ChangeStream
	Ready trace.ChangeStream
}

// AXIReadAnalyzer reconstructs AXI read transactions from the AR and R
// channels (spec §4.3a), grounded on
// original_source/src/analyze/analyzer/axi_analyzer.rs's AXIRdAnalyzer.
//
// When ID is nil the analyzer runs in "lite" mode: every R firing completes
// the oldest outstanding AR command, in order, with no reordering across
// ids. When ID is set it runs in "full" mode: transactions are tracked
// per-id, and Last marks the final beat of a burst.
type AXIReadAnalyzer struct {
	Name       string
	ClockReset ClockReset
	AR         AXIChannel
	R          AXIChannel
	ID         trace.ChangeStream // optional: ar.id, sampled just before the AR firing edge to open a transaction
	RID        trace.ChangeStream // optional: r.id, sampled just before the R firing edge to correlate a response
	Last       trace.ChangeStream // optional: high on R's final beat (full mode only)
	Resp       trace.ChangeStream // response code, sampled just before the completing R firing edge

	WindowLength period.Cycles
	XRate, YRate decimal.Decimal
	Diag         diag.Sink
}

func (a *AXIReadAnalyzer) full() bool { return a.ID != nil }

// Run drives the reconstruction over every configured interval (or the
// whole trace, if none were configured) and returns the accumulated usage.
func (a *AXIReadAnalyzer) Run() (*bususage.MultiChannelBusUsage, error) {
	clockPeriod, err := a.ClockReset.TimeTable.ClockPeriod()
	if err != nil {
		return nil, fmt.Errorf("bus %q: %w", a.Name, err)
	}

	usage := bususage.NewMultiChannelBusUsage(a.Name, a.WindowLength, clockPeriod, a.XRate, a.YRate)
	tt := a.ClockReset.TimeTable

	intervals := a.ClockReset.Intervals
	if len(intervals) == 0 {
		last := uint64(0)
		if len(tt) > 0 {
			last = tt[len(tt)-1]
		}
		intervals = [][2]uint64{{0, last}}
	}

	var totalResetCycles uint64
	var pending idFIFO = idFIFO{}

	for _, iv := range intervals {
		startIdx, endIdx, ok := intervalBounds(tt, iv[0], iv[1])
		if !ok {
			continue
		}

		arFirings := materializeHandshake(a.ClockReset.Clock, a.AR.Ready, a.AR.Valid, startIdx, endIdx)
		rFirings := materializeHandshake(a.ClockReset.Clock, a.R.Ready, a.R.Valid, startIdx, endIdx)
		resets := resetEdges(a.ClockReset.Reset, a.ClockReset.ResetActiveHigh)

		a.merge(usage, pending, arFirings, rFirings, resets, endIdx)

		totalResetCycles += countResetCycles(a.ClockReset.Reset, a.ClockReset.ResetActiveHigh, startIdx, endIdx)
		usage.AddTime(tt.At(endIdx) - tt.At(startIdx))
	}

	if starts := pending.startTimes(); len(starts) > 0 && a.Diag != nil {
		a.Diag.Warnf(a.Name, starts[0], "%d read transaction(s) still outstanding at end of analysis", len(starts))
	}

	usage.End(period.Cycles(totalResetCycles), intervals)
	return usage, nil
}

// merge walks the AR and R firings in time order, reconstructing
// transactions per id (or a single queue, in lite mode) and folding every
// completed one into usage.
func (a *AXIReadAnalyzer) merge(usage *bususage.MultiChannelBusUsage, pending idFIFO, arFirings, rFirings []trace.TimeIndex, resets []trace.TimeIndex, lastTime trace.TimeIndex) {
	type event struct {
		t    trace.TimeIndex
		isAR bool
	}
	events := make([]event, 0, len(arFirings)+len(rFirings))
	for _, t := range arFirings {
		events = append(events, event{t, true})
	}
	for _, t := range rFirings {
		events = append(events, event{t, false})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].t != events[j].t {
			return events[i].t < events[j].t
		}
		return events[i].isAR && !events[j].isAR
	})

	tt := a.ClockReset.TimeTable
	resetIdx := 0

	for _, ev := range events {
		for resetIdx < len(resets) && resets[resetIdx] <= ev.t {
			if starts := pending.startTimes(); len(starts) > 0 && a.Diag != nil {
				a.Diag.Warnf(a.Name, resets[resetIdx], "%d read transaction(s) still outstanding at reset", len(starts))
			}
			pending.clear()
			resetIdx++
		}

		if ev.isAR {
			id := ""
			if a.ID != nil {
				id = trace.SampleBefore(a.ID, ev.t).BitString()
			}
			pending.push(id, &transaction{start: ev.t, next: nextAfter(arFirings, ev.t, lastTime)})
			continue
		}

		id := ""
		if a.RID != nil {
			id = trace.SampleBefore(a.RID, ev.t).BitString()
		}

		tx := pending.front(id)
		if tx == nil {
			if a.Diag != nil {
				a.Diag.Warnf(a.Name, ev.t, "read response with no outstanding command")
			}
			continue
		}

		if !tx.haveFirst {
			tx.firstData = ev.t
			tx.haveFirst = true
		}
		tx.lastData = ev.t

		isLast := true
		if a.full() && a.Last != nil {
			isLast = trace.SampleBefore(a.Last, ev.t).IsOne()
		}
		if !isLast {
			continue
		}

		pending.popFront(id)
		resp := ""
		if a.Resp != nil {
			resp = trace.SampleBefore(a.Resp, ev.t).BitString()
		}
		usage.AddTransaction(
			tt.At(tx.start),
			tt.At(ev.t),
			tt.At(tx.lastData),
			tt.At(tx.firstData),
			resp,
			tt.At(tx.next),
		)
	}
}
