package handshake

import "github.com/busperf/busperf/internal/trace"

// changePeeker is a single-element-lookahead cursor over a raw change
// stream, used for the ready/valid channels of ReadyValidTransactionIterator
// (spec design note §9: explicit lookahead rather than an interior-mutable
// cell).
type changePeeker struct {
	changes []trace.Change
	pos     int
}

func newChangePeeker(changes []trace.Change) *changePeeker {
	return &changePeeker{changes: changes}
}

func (p *changePeeker) Peek() (trace.Change, bool) {
	if p.pos >= len(p.changes) {
		return trace.Change{}, false
	}
	return p.changes[p.pos], true
}

func (p *changePeeker) Next() (trace.Change, bool) {
	if p.pos >= len(p.changes) {
		return trace.Change{}, false
	}
	c := p.changes[p.pos]
	p.pos++
	return c, true
}

func (p *changePeeker) find(pred func(trace.Value) bool) (trace.TimeIndex, bool) {
	for {
		c, ok := p.Next()
		if !ok {
			return 0, false
		}
		if pred(c.Value) {
			return c.Time, true
		}
	}
}

// ReadyValidTransactionIterator yields the time index of every clock rising
// edge at which both ready and valid hold immediately before the edge
// (spec §4.1).
type ReadyValidTransactionIterator struct {
	currentTime trace.TimeIndex
	clk         *RisingEdgeIterator
	ready       *changePeeker
	valid       *changePeeker
	timeEnd     trace.TimeIndex
}

// NewReadyValidTransactionIterator builds the iterator over a clock, ready
// and valid change stream, bounded by timeEnd (inclusive).
func NewReadyValidTransactionIterator(clk, ready, valid trace.ChangeStream, timeEnd trace.TimeIndex) *ReadyValidTransactionIterator {
	clkIter := NewRisingEdgeIterator(clk)
	readyP := newChangePeeker(ready.Changes())
	validP := newChangePeeker(valid.Changes())

	currentTime := timeEnd
	if t, ok := readyP.find(trace.Value.IsOne); ok {
		currentTime = t
	} else {
		currentTime = timeEnd
	}
	if t, ok := validP.find(trace.Value.IsOne); ok {
		if t > currentTime {
			currentTime = t
		}
	} else {
		currentTime = timeEnd
	}

	return &ReadyValidTransactionIterator{
		currentTime: currentTime,
		clk:         clkIter,
		ready:       readyP,
		valid:       validP,
		timeEnd:     timeEnd,
	}
}

// Next returns the time index of the next handshake firing, or false when
// the iterator is exhausted.
func (r *ReadyValidTransactionIterator) Next() (trace.TimeIndex, bool) {
	for {
		t, ok := r.clk.Next()
		if !ok {
			return 0, false
		}
		if t > r.currentTime {
			r.currentTime = t
			break
		}
	}

	for {
		readyChange, readyOK := r.ready.Peek()
		validChange, validOK := r.valid.Peek()

		var smaller *changePeeker
		switch {
		case !readyOK && !validOK:
			smaller = nil
		case !readyOK:
			smaller = r.valid
		case !validOK:
			smaller = r.ready
		default:
			if readyChange.Time > validChange.Time {
				smaller = r.valid
			} else {
				smaller = r.ready
			}
		}
		if smaller == nil {
			break
		}

		if r.currentTime > r.timeEnd {
			return 0, false
		}

		peeked, _ := smaller.Peek()
		if r.currentTime > peeked.Time {
			for {
				c, ok := smaller.Peek()
				if !ok || c.Value.IsOne() {
					break
				}
				smaller.Next()
			}
			c, ok := smaller.Next()
			if !ok {
				return 0, false
			}
			if c.Time >= r.currentTime {
				if t, found := r.clk.FindAfter(func(e trace.TimeIndex) bool { return e > c.Time }); found {
					r.currentTime = t
				} else {
					r.currentTime = r.timeEnd
				}
			}
		} else {
			return r.currentTime, true
		}
	}
	if r.currentTime > r.timeEnd {
		return 0, false
	}
	return r.currentTime, true
}

// Peekable wraps an iterator-like Next() method with a one-element
// lookahead, for peeking a ReadyValidTransactionIterator without consuming
// it. The analyzers in this module do not use it: they materialize
// firings with Collect instead.
type Peekable struct {
	next   func() (trace.TimeIndex, bool)
	peeked *trace.TimeIndex
}

// NewPeekable wraps an iterator's Next method.
func NewPeekable(next func() (trace.TimeIndex, bool)) *Peekable {
	return &Peekable{next: next}
}

// Next returns the next value, consuming the lookahead if present.
func (p *Peekable) Next() (trace.TimeIndex, bool) {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t, true
	}
	return p.next()
}

// Peek returns the next value without consuming it.
func (p *Peekable) Peek() (trace.TimeIndex, bool) {
	if p.peeked == nil {
		t, ok := p.next()
		if !ok {
			return 0, false
		}
		p.peeked = &t
	}
	return *p.peeked, true
}

// NextIfBefore consumes and returns the next value iff it is strictly less
// than bound; calling it in a loop fast-forwards an iterator to bound.
func (p *Peekable) NextIfBefore(bound trace.TimeIndex) (trace.TimeIndex, bool) {
	t, ok := p.Peek()
	if !ok || t >= bound {
		return 0, false
	}
	return p.Next()
}

// iterator is anything with a Next() (trace.TimeIndex, bool) method; both
// RisingEdgeIterator and ReadyValidTransactionIterator satisfy it.
type iterator interface {
	Next() (trace.TimeIndex, bool)
}

// Collect drains an iterator into a slice. The AXI analyzers use this to
// materialize a bus's handshake firings once per analysis interval, since
// the engine's trace contract already holds the whole interval in memory
// (spec §5: the core has no suspension points).
func Collect(it iterator) []trace.TimeIndex {
	var out []trace.TimeIndex
	for {
		t, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}
