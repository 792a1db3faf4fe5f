package analyzer

import (
	"github.com/busperf/busperf/internal/handshake"
	"github.com/busperf/busperf/internal/trace"
)

// transaction is one in-flight AXI command awaiting its data beats and
// response, grounded on original_source's Transaction struct.
type transaction struct {
	start     trace.TimeIndex
	firstData trace.TimeIndex
	lastData  trace.TimeIndex
	haveFirst bool
	haveLast  bool
	next      trace.TimeIndex
}

// idFIFO is the per-id map of in-flight transactions (spec design note §9:
// FIFO-per-id map), enforcing AXI's in-order-per-id completion rule.
type idFIFO map[string][]*transaction

func (f idFIFO) push(id string, t *transaction) {
	f[id] = append(f[id], t)
}

// popFront removes and returns the oldest in-flight transaction for id, or
// nil if none is outstanding.
func (f idFIFO) popFront(id string) *transaction {
	q := f[id]
	if len(q) == 0 {
		return nil
	}
	t := q[0]
	f[id] = q[1:]
	return t
}

// front returns (without removing) the oldest in-flight transaction for id.
func (f idFIFO) front(id string) *transaction {
	q := f[id]
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

// startTimes lists every outstanding transaction's start index, across
// every id, for the "unfinished transaction" warning.
func (f idFIFO) startTimes() []trace.TimeIndex {
	var out []trace.TimeIndex
	for _, q := range f {
		for _, t := range q {
			out = append(out, t.start)
		}
	}
	return out
}

func (f idFIFO) clear() {
	for k := range f {
		delete(f, k)
	}
}

// resetEdges materializes every change of the reset signal to its active
// level (a rising edge when active-high, a falling edge when active-low)
// over the whole trace, not just one analysis interval, used to gate AXI
// reconstruction the same way RisingSignalIterator does in the original
// (spec design note §9).
func resetEdges(reset trace.ChangeStream, activeHigh bool) []trace.TimeIndex {
	target := trace.ValueOne
	if !activeHigh {
		target = trace.ValueZero
	}
	var out []trace.TimeIndex
	for _, c := range reset.Changes() {
		if c.Value.Bit() == target {
			out = append(out, c.Time)
		}
	}
	return out
}

// countResetCycles implements count_reset: sums the half-cycle spans reset
// was asserted between startIdx and endIdx (exclusive), halved at the end —
// a direct port of the original's count_reset, quirks included.
func countResetCycles(reset trace.ChangeStream, activeHigh bool, startIdx, endIdx trace.TimeIndex) uint64 {
	last := uint64(startIdx)
	var total uint64
	for _, c := range reset.Changes() {
		if c.Time <= startIdx || c.Time >= endIdx {
			continue
		}
		isActive := (activeHigh && c.Value.IsOne()) || (!activeHigh && c.Value.IsZero())
		if isActive {
			last = uint64(c.Time)
		} else {
			total += uint64(c.Time) - last
		}
	}
	return total / 2
}

// materializeHandshake builds and fast-forwards a ReadyValidTransactionIterator
// to startIdx, then collects every remaining firing up to endIdx.
func materializeHandshake(clk, ready, valid trace.ChangeStream, startIdx, endIdx trace.TimeIndex) []trace.TimeIndex {
	it := handshake.NewReadyValidTransactionIterator(clk, ready, valid, endIdx)
	all := handshake.Collect(it)
	out := all[:0:0]
	for _, t := range all {
		if t >= startIdx {
			out = append(out, t)
		}
	}
	return out
}

// intervalBounds converts an absolute-time [start,end] interval into the
// smallest/largest time-table indices falling inside it.
func intervalBounds(tt trace.TimeTable, start, end uint64) (trace.TimeIndex, trace.TimeIndex, bool) {
	startIdx, ok := tt.IndexAtOrAfter(start)
	if !ok {
		return 0, 0, false
	}
	endIdx, ok := tt.IndexAtOrBefore(end)
	if !ok {
		return 0, 0, false
	}
	return startIdx, endIdx, true
}

// nextAfter returns the smallest element of times that is > after, or
// fallback if none exists — the "next transaction start" / resync lookup
// used throughout the AXI reconstruction.
func nextAfter(times []trace.TimeIndex, after trace.TimeIndex, fallback trace.TimeIndex) trace.TimeIndex {
	for _, t := range times {
		if t > after {
			return t
		}
	}
	return fallback
}
