// Package statemachine implements the single-channel burst/delay state
// machine of spec §4.4, grounded line-for-line on
// original_source/libbusperf/src/bus_usage.rs's add_busy_cycle /
// add_wasted_cycle.
package statemachine

import "github.com/busperf/busperf/internal/period"

// Calculating is the bus's current run state: which of burst_lengths or
// transaction_delays is being extended, and whether a burst is mid-pause.
type Calculating int

const (
	// None means no busy or wasted cycle has been seen yet.
	None Calculating = iota
	// Burst means the bus is in the middle of a busy run.
	Burst
	// Delay means the bus is in the middle of an idle run between bursts.
	Delay
)

// String renders the run state for logging and metrics labels.
func (c Calculating) String() string {
	switch c {
	case None:
		return "none"
	case Burst:
		return "burst"
	case Delay:
		return "delay"
	default:
		return "pausing"
	}
}

// State holds the running burst/delay reconstruction for one channel.
// MaxBurstDelay short idle gaps inside a burst (of at most this many cycles)
// are folded into the burst instead of ending it (spec §4.4).
type State struct {
	MaxBurstDelay period.Cycles
	ClockPeriod   period.AbsTime

	current Calculating
	pause   period.Cycles // > 0 while inside a burst's short pause

	BurstLengths     []period.Period
	TransactionDelays []period.Period
}

// NewState builds an empty burst/delay tracker.
func NewState(maxBurstDelay period.Cycles, clockPeriod period.AbsTime) *State {
	return &State{MaxBurstDelay: maxBurstDelay, ClockPeriod: clockPeriod, current: None}
}

// AddCycle folds one classified cycle into the running reconstruction.
func (s *State) AddCycle(t period.CycleType) {
	if t == period.Busy {
		s.addBusyCycle()
	} else {
		s.addWastedCycle()
	}
}

func (s *State) addBusyCycle() {
	switch s.current {
	case None:
		s.BurstLengths = append(s.BurstLengths, period.WithDuration(0, 1, s.ClockPeriod))
		s.current = Burst
	case Burst:
		last := &s.BurstLengths[len(s.BurstLengths)-1]
		last.AddCycle(s.ClockPeriod)
	case Delay:
		delay := s.TransactionDelays[len(s.TransactionDelays)-1]
		s.BurstLengths = append(s.BurstLengths, period.WithDuration(delay.End+s.ClockPeriod, 1, s.ClockPeriod))
		s.current = Burst
	default: // paused inside a burst
		last := &s.BurstLengths[len(s.BurstLengths)-1]
		last.AddCycles(s.pause+1, s.ClockPeriod)
		s.pause = 0
		s.current = Burst
	}
}

func (s *State) addWastedCycle() {
	switch s.current {
	case None:
		s.TransactionDelays = append(s.TransactionDelays, period.WithDuration(0, 1, s.ClockPeriod))
		s.current = Delay
	case Burst:
		if s.MaxBurstDelay == 0 {
			transactionEnd := s.BurstLengths[len(s.BurstLengths)-1].End
			s.TransactionDelays = append(s.TransactionDelays, period.WithDuration(transactionEnd+s.ClockPeriod, 1, s.ClockPeriod))
			s.current = Delay
		} else {
			s.pause = 1
			s.current = pausing
		}
	case Delay:
		last := &s.TransactionDelays[len(s.TransactionDelays)-1]
		last.AddCycle(s.ClockPeriod)
	default: // pausing
		if s.pause+1 > s.MaxBurstDelay {
			transactionEnd := s.BurstLengths[len(s.BurstLengths)-1].End
			s.TransactionDelays = append(s.TransactionDelays, period.WithDuration(transactionEnd+s.ClockPeriod, s.pause+1, s.ClockPeriod))
			s.pause = 0
			s.current = Delay
		} else {
			s.pause++
		}
	}
}

// pausing is a fourth Calculating value (Pause(n) in the original), kept
// unexported since its payload (s.pause) lives alongside it in State rather
// than inside the enum, unlike the Rust Pause(CyclesNum) variant.
const pausing Calculating = 3

// Current reports the current calculation state, for tests and diagnostics.
func (s *State) Current() Calculating { return s.current }

// PauseCycles reports the in-progress pause length, valid only when
// Current() == the internal pausing state (exposed via CurrentlyPausing).
func (s *State) PauseCycles() period.Cycles { return s.pause }

// CurrentlyPausing reports whether the state machine is mid-burst-pause.
func (s *State) CurrentlyPausing() bool { return s.current == pausing }
