package trace

import "sort"

// SampleAt returns the value in effect on cs at time index idx: the value
// set by the last change at or before idx. If idx precedes the stream's
// first change, ValueUnknown is returned (no value is defined yet).
func SampleAt(cs ChangeStream, idx TimeIndex) Value {
	changes := cs.Changes()
	i := sort.Search(len(changes), func(i int) bool { return changes[i].Time > idx })
	if i == 0 {
		return Value{Kind: ValueUnknown, Bits: []ValueKind{ValueUnknown}}
	}
	return changes[i-1].Value
}

// SampleBefore is shorthand for SampleAt(cs, idx-1), saturating at 0 — the
// "values sampled at time_index - 1" convention used throughout the
// classifiers and AXI reconstruction (spec §4.2, §4.3).
func SampleBefore(cs ChangeStream, idx TimeIndex) Value {
	if idx == 0 {
		return SampleAt(cs, 0)
	}
	return SampleAt(cs, idx-1)
}
