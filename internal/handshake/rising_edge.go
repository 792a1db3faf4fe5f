// Package handshake implements the lazy, forward-only iterators that drive
// both the single-channel and AXI analyzers from sparse signal-change
// streams (spec §4.1).
package handshake

import "github.com/busperf/busperf/internal/trace"

// RisingEdgeIterator yields the time index of every transition of a signal
// to a clean logical 1. It never rewinds and supports a single-element
// lookahead (spec design note §9).
type RisingEdgeIterator struct {
	changes []trace.Change
	pos     int
	peeked  *trace.TimeIndex
}

// NewRisingEdgeIterator builds an iterator over a signal's raw change
// stream.
func NewRisingEdgeIterator(cs trace.ChangeStream) *RisingEdgeIterator {
	return &RisingEdgeIterator{changes: cs.Changes()}
}

// Next returns the next rising-edge time index, or false if exhausted.
func (r *RisingEdgeIterator) Next() (trace.TimeIndex, bool) {
	if r.peeked != nil {
		t := *r.peeked
		r.peeked = nil
		return t, true
	}
	for r.pos < len(r.changes) {
		c := r.changes[r.pos]
		r.pos++
		if c.Value.IsOne() {
			return c.Time, true
		}
	}
	return 0, false
}

// Peek returns the next rising edge without consuming it.
func (r *RisingEdgeIterator) Peek() (trace.TimeIndex, bool) {
	if r.peeked == nil {
		t, ok := r.Next()
		if !ok {
			return 0, false
		}
		r.peeked = &t
	}
	return *r.peeked, true
}

// FindAfter advances until it finds a rising edge satisfying pred, leaving
// that edge peeked. Edges that do not satisfy pred, including an already
// peeked one, are consumed. Used by ReadyValidTransactionIterator to
// re-synchronize to the first clock edge after a handshake signal returns
// to 1 (spec §4.1).
func (r *RisingEdgeIterator) FindAfter(pred func(trace.TimeIndex) bool) (trace.TimeIndex, bool) {
	for {
		t, ok := r.Next()
		if !ok {
			return 0, false
		}
		if pred(t) {
			r.peeked = &t
			return t, true
		}
	}
}
