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

// AXIWriteAnalyzer reconstructs AXI write transactions from the AW, W and B
// channels (spec §4.3a), grounded on
// original_source/src/analyze/analyzer/axi_analyzer.rs's AXIWrAnalyzer.
//
// Unlike the read side, data (W) and response (B) arrive on separate
// channels: W beats extend the transaction's first/last-data span without
// completing it, and completion only happens once B's response for that id
// arrives.
type AXIWriteAnalyzer struct {
	Name       string
	ClockReset ClockReset
	AW         AXIChannel
	W          AXIChannel
	B          AXIChannel
	ID         trace.ChangeStream // optional: awid, sampled just before the AW firing edge to open a transaction
	BID        trace.ChangeStream // optional: bid, sampled just before the B firing edge to correlate a response
	Last       trace.ChangeStream // optional: wlast, sampled just before the W firing edge (full mode)
	Resp       trace.ChangeStream // bresp, sampled just before the completing B firing edge

	WindowLength period.Cycles
	XRate, YRate decimal.Decimal
	Diag         diag.Sink
}

func (a *AXIWriteAnalyzer) full() bool { return a.ID != nil }

// Run drives the reconstruction over every configured interval (or the
// whole trace, if none were configured) and returns the accumulated usage.
func (a *AXIWriteAnalyzer) Run() (*bususage.MultiChannelBusUsage, error) {
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

		awFirings := materializeHandshake(a.ClockReset.Clock, a.AW.Ready, a.AW.Valid, startIdx, endIdx)
		wFirings := materializeHandshake(a.ClockReset.Clock, a.W.Ready, a.W.Valid, startIdx, endIdx)
		bFirings := materializeHandshake(a.ClockReset.Clock, a.B.Ready, a.B.Valid, startIdx, endIdx)
		resets := resetEdges(a.ClockReset.Reset, a.ClockReset.ResetActiveHigh)

		a.merge(usage, pending, awFirings, wFirings, bFirings, resets, endIdx)

		totalResetCycles += countResetCycles(a.ClockReset.Reset, a.ClockReset.ResetActiveHigh, startIdx, endIdx)
		usage.AddTime(tt.At(endIdx) - tt.At(startIdx))
	}

	if starts := pending.startTimes(); len(starts) > 0 && a.Diag != nil {
		a.Diag.Warnf(a.Name, starts[0], "%d write transaction(s) still outstanding at end of analysis", len(starts))
	}

	usage.End(period.Cycles(totalResetCycles), intervals)
	return usage, nil
}

// merge walks AW/W/B firings in time order. AW opens a transaction, W beats
// extend its data span without completing it, and B's response closes the
// oldest outstanding transaction for the responding id.
func (a *AXIWriteAnalyzer) merge(usage *bususage.MultiChannelBusUsage, pending idFIFO, awFirings, wFirings, bFirings []trace.TimeIndex, resets []trace.TimeIndex, lastTime trace.TimeIndex) {
	const (
		kindAW = iota
		kindW
		kindB
	)
	type event struct {
		t    trace.TimeIndex
		kind int
	}
	events := make([]event, 0, len(awFirings)+len(wFirings)+len(bFirings))
	for _, t := range awFirings {
		events = append(events, event{t, kindAW})
	}
	for _, t := range wFirings {
		events = append(events, event{t, kindW})
	}
	for _, t := range bFirings {
		events = append(events, event{t, kindB})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].t != events[j].t {
			return events[i].t < events[j].t
		}
		return events[i].kind < events[j].kind
	})

	tt := a.ClockReset.TimeTable
	resetIdx := 0
	// currentW tracks the most recently opened transaction still accepting
	// W beats. The W channel carries no id of its own, so beats always
	// extend whichever command was opened last, matching the original's
	// single-in-flight-write assumption.
	var currentW *transaction

	for _, ev := range events {
		for resetIdx < len(resets) && resets[resetIdx] <= ev.t {
			if starts := pending.startTimes(); len(starts) > 0 && a.Diag != nil {
				a.Diag.Warnf(a.Name, resets[resetIdx], "%d write transaction(s) still outstanding at reset", len(starts))
			}
			pending.clear()
			currentW = nil
			resetIdx++
		}

		switch ev.kind {
		case kindAW:
			id := ""
			if a.ID != nil {
				id = trace.SampleBefore(a.ID, ev.t).BitString()
			}
			tx := &transaction{start: ev.t, next: nextAfter(awFirings, ev.t, lastTime)}
			pending.push(id, tx)
			currentW = tx

		case kindW:
			tx := currentW
			if tx == nil {
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
			if isLast {
				tx.haveLast = true
				currentW = nil
			}

		case kindB:
			id := ""
			if a.BID != nil {
				id = trace.SampleBefore(a.BID, ev.t).BitString()
			}
			tx := pending.front(id)
			if tx == nil || !tx.haveLast {
				if a.Diag != nil {
					a.Diag.Warnf(a.Name, ev.t, "write response with no outstanding command")
				}
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
}
