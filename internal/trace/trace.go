// Package trace defines the contract the bus analysis engine expects from a
// waveform trace source, plus a small in-memory implementation used by tests
// and by callers that already have signal data resident in memory.
//
// Parsing a real waveform file (VCD, FST, ...) is out of scope for this
// package; producing a trace.Source is the job of a separate loader.
package trace

import "fmt"

// SignalPath identifies a signal by its hierarchical scope and leaf name.
// Two SignalPaths are equal iff their Scope slices and Name are equal.
type SignalPath struct {
	Scope []string
	Name  string
}

// String renders the dotted path, e.g. "top.sub.ready".
func (p SignalPath) String() string {
	s := ""
	for _, c := range p.Scope {
		s += c + "."
	}
	return s + p.Name
}

// Equal reports whether p and other refer to the same signal.
func (p SignalPath) Equal(other SignalPath) bool {
	if p.Name != other.Name || len(p.Scope) != len(other.Scope) {
		return false
	}
	for i := range p.Scope {
		if p.Scope[i] != other.Scope[i] {
			return false
		}
	}
	return true
}

// TimeIndex is an index into a trace's time table.
type TimeIndex = uint32

// Change is a single value transition of a signal: at TimeIndex the signal
// took on Value.
type Change struct {
	Time  TimeIndex
	Value Value
}

// ValueKind classifies a sampled signal value.
type ValueKind int

const (
	// ValueZero is a clean logical 0.
	ValueZero ValueKind = iota
	// ValueOne is a clean logical 1.
	ValueOne
	// ValueUnknown covers 'x'/'z' and any other non-binary state.
	ValueUnknown
)

// Value is a sampled signal value. Bits holds the binary representation
// (MSB first) when Kind permits it; for single-bit signals len(Bits) == 1.
type Value struct {
	Kind ValueKind
	Bits []ValueKind
}

// Bit returns the logical value of a single-bit signal, or ValueUnknown if
// the value is not a clean 0/1.
func (v Value) Bit() ValueKind {
	if len(v.Bits) == 1 {
		return v.Bits[0]
	}
	return v.Kind
}

// IsOne reports whether the value is a clean logical 1 (single bit only).
func (v Value) IsOne() bool { return v.Bit() == ValueOne }

// IsZero reports whether the value is a clean logical 0 (single bit only).
func (v Value) IsZero() bool { return v.Bit() == ValueZero }

// BitString renders the value as a string of '0'/'1'/'x', MSB first. Used to
// match response-code suffixes (spec §4.3b) regardless of bus width.
func (v Value) BitString() string {
	bits := v.Bits
	if len(bits) == 0 {
		bits = []ValueKind{v.Kind}
	}
	out := make([]byte, len(bits))
	for i, b := range bits {
		switch b {
		case ValueZero:
			out[i] = '0'
		case ValueOne:
			out[i] = '1'
		default:
			out[i] = 'x'
		}
	}
	return string(out)
}

// Clean reports whether every bit of the value is a clean 0/1 (no x/z).
func (v Value) Clean() bool {
	bits := v.Bits
	if len(bits) == 0 {
		bits = []ValueKind{v.Kind}
	}
	for _, b := range bits {
		if b != ValueZero && b != ValueOne {
			return false
		}
	}
	return true
}

// ChangeStream is a monotonically ordered, forward-only view of a single
// signal's value transitions.
type ChangeStream interface {
	// Changes returns every recorded transition in time order.
	Changes() []Change
}

// TimeTable maps a time index to the absolute (picosecond) time it
// represents. Index 0 is simulation start, index 1 the first half-cycle,
// index 2 one full clock period (spec §3).
type TimeTable []uint64

// ClockPeriod derives the clock period from the convention that index 2 of
// the time table is exactly one full clock period. Returns an error if the
// table is too short to contain it (spec §7, trace-structure error).
func (t TimeTable) ClockPeriod() (uint64, error) {
	if len(t) < 3 {
		return 0, fmt.Errorf("trace has fewer than 3 time indices (%d); cannot derive clock period", len(t))
	}
	return t[2], nil
}

// At returns the absolute time for a time index. An index past the end of
// the table yields the last entry's time; an empty table yields 0.
func (t TimeTable) At(idx TimeIndex) uint64 {
	if int(idx) >= len(t) {
		if len(t) == 0 {
			return 0
		}
		return t[len(t)-1]
	}
	return t[idx]
}

// IndexAtOrAfter returns the smallest time index whose absolute time is >=
// target, and whether one was found.
func (t TimeTable) IndexAtOrAfter(target uint64) (TimeIndex, bool) {
	for i, v := range t {
		if v >= target {
			return TimeIndex(i), true
		}
	}
	return 0, false
}

// IndexAtOrBefore returns the largest time index whose absolute time is <=
// target, and whether one was found.
func (t TimeTable) IndexAtOrBefore(target uint64) (TimeIndex, bool) {
	found := false
	var idx TimeIndex
	for i, v := range t {
		if v <= target {
			idx = TimeIndex(i)
			found = true
		} else {
			break
		}
	}
	return idx, found
}

// Source is the contract the analysis engine needs from a trace: a way to
// resolve a SignalPath to its change stream, and the shared time table.
type Source interface {
	// Resolve looks up the change stream for a signal. It returns an error
	// if the signal is not present in the trace (spec §7, trace-structure
	// error).
	Resolve(path SignalPath) (ChangeStream, error)
	// TimeTable returns the trace's time index -> absolute time mapping.
	TimeTable() TimeTable
}

// MemChangeStream is a ChangeStream backed by a plain slice, for tests and
// for callers building traces programmatically.
type MemChangeStream []Change

// Changes implements ChangeStream.
func (m MemChangeStream) Changes() []Change { return []Change(m) }

// MemTrace is an in-memory Source, keyed by SignalPath.
type MemTrace struct {
	Table   TimeTable
	Signals map[string]MemChangeStream
}

// NewMemTrace creates an empty in-memory trace with the given time table.
func NewMemTrace(table TimeTable) *MemTrace {
	return &MemTrace{Table: table, Signals: map[string]MemChangeStream{}}
}

// Put registers the change stream for a signal path.
func (m *MemTrace) Put(path SignalPath, changes MemChangeStream) {
	m.Signals[path.String()] = changes
}

// Resolve implements Source.
func (m *MemTrace) Resolve(path SignalPath) (ChangeStream, error) {
	cs, ok := m.Signals[path.String()]
	if !ok {
		return nil, fmt.Errorf("signal %q not present in trace", path)
	}
	return cs, nil
}

// TimeTable implements Source.
func (m *MemTrace) TimeTable() TimeTable { return m.Table }

// Bit builds a single-bit Value from a 0/1/other int (other => unknown).
func Bit(v int) Value {
	switch v {
	case 0:
		return Value{Kind: ValueZero, Bits: []ValueKind{ValueZero}}
	case 1:
		return Value{Kind: ValueOne, Bits: []ValueKind{ValueOne}}
	default:
		return Value{Kind: ValueUnknown, Bits: []ValueKind{ValueUnknown}}
	}
}

// Bits builds a multi-bit Value from a slice of 0/1/other ints, MSB first.
func Bits(vs ...int) Value {
	kinds := make([]ValueKind, len(vs))
	allClean := true
	for i, v := range vs {
		switch v {
		case 0:
			kinds[i] = ValueZero
		case 1:
			kinds[i] = ValueOne
		default:
			kinds[i] = ValueUnknown
			allClean = false
		}
	}
	kind := ValueUnknown
	if allClean {
		kind = ValueZero
	}
	return Value{Kind: kind, Bits: kinds}
}
