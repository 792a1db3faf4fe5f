// Package period implements the Period value type and the cycle
// classification enum shared by every analyzer in the engine.
package period

import "fmt"

// AbsTime is a real waveform time, in the trace's opaque time units
// (picoseconds by convention; the trace's time table is authoritative).
type AbsTime = uint64

// Cycles is a signed duration in clock periods.
type Cycles = int32

// Period is a span of time expressed both as absolute start/end and as a
// duration in clock cycles (spec §3).
type Period struct {
	Start    AbsTime
	End      AbsTime
	Duration Cycles
}

// New builds a Period from two absolute times and the clock period,
// flooring the signed duration (spec §3: "for periods built from two
// absolute times, duration = (end - start) / clock_period, floored,
// signed").
func New(start, end, clockPeriod AbsTime) Period {
	d := (int64(end) - int64(start)) / int64(clockPeriod)
	return Period{Start: start, End: end, Duration: Cycles(d)}
}

// WithDuration builds a Period spanning exactly duration cycles starting at
// start (spec §3: "end == start + (duration-1)*clock_period").
func WithDuration(start AbsTime, duration Cycles, clockPeriod AbsTime) Period {
	end := start + uint64(duration-1)*clockPeriod
	return Period{Start: start, End: end, Duration: duration}
}

// AddCycle extends the period by one clock cycle.
func (p *Period) AddCycle(clockPeriod AbsTime) {
	p.AddCycles(1, clockPeriod)
}

// AddCycles extends the period by n clock cycles.
func (p *Period) AddCycles(n Cycles, clockPeriod AbsTime) {
	p.End += uint64(n) * clockPeriod
	p.Duration += n
}

// String renders the period as "(start,end,duration)" for diagnostics.
func (p Period) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.Start, p.End, p.Duration)
}

// CycleType classifies the state of a bus during one sampled cycle
// (spec §3).
type CycleType int

const (
	Busy CycleType = iota
	Free
	NoTransaction
	Backpressure
	NoData
	Reset
	Unknown
)

func (t CycleType) String() string {
	switch t {
	case Busy:
		return "Busy"
	case Free:
		return "Free"
	case NoTransaction:
		return "NoTransaction"
	case Backpressure:
		return "Backpressure"
	case NoData:
		return "NoData"
	case Reset:
		return "Reset"
	default:
		return "Unknown"
	}
}
