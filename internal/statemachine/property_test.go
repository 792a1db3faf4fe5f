package statemachine

import (
	"testing"

	"github.com/busperf/busperf/internal/period"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestCycleConservation_Property checks the universal invariant that every
// sampled cycle is accounted for exactly once across BurstLengths and
// TransactionDelays: their total duration always equals the number of
// cycles fed in.
func TestCycleConservation_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxBurstDelay := period.Cycles(rapid.IntRange(0, 5).Draw(t, "maxBurstDelay"))
		n := rapid.IntRange(0, 200).Draw(t, "n")
		s := NewState(maxBurstDelay, 2)

		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(t, "busy") {
				s.AddCycle(period.Busy)
			} else {
				s.AddCycle(period.Free)
			}
		}

		total := period.Cycles(0)
		for _, b := range s.BurstLengths {
			total += b.Duration
		}
		for _, d := range s.TransactionDelays {
			total += d.Duration
		}
		if s.CurrentlyPausing() {
			total += s.PauseCycles()
		}
		assert.Equal(t, period.Cycles(n), total)
	})
}

// TestBurstDelayPartition_Property checks that no two burst or delay
// periods overlap, i.e. the reconstruction never double-counts a stretch
// of the cycle sequence.
func TestBurstDelayPartition_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxBurstDelay := period.Cycles(rapid.IntRange(0, 5).Draw(t, "maxBurstDelay"))
		n := rapid.IntRange(1, 200).Draw(t, "n")
		s := NewState(maxBurstDelay, 2)

		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(t, "busy") {
				s.AddCycle(period.Busy)
			} else {
				s.AddCycle(period.Free)
			}
		}

		all := append(append([]period.Period{}, s.BurstLengths...), s.TransactionDelays...)
		for i := 0; i < len(all); i++ {
			for j := i + 1; j < len(all); j++ {
				a, b := all[i], all[j]
				overlap := a.Start < b.End && b.Start < a.End
				assert.Falsef(t, overlap, "periods overlap: %v and %v", a, b)
			}
		}
	})
}
