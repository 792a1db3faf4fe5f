package analyzer

import (
	"testing"

	"github.com/busperf/busperf/internal/trace"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestIDFIFO_CorrelationOrdering_Property checks the universal invariant
// that AXI response correlation is first-in-first-out per id: whatever
// order commands are pushed for a given id, popFront always returns them
// in that same order, never skipping ahead to a later command.
func TestIDFIFO_CorrelationOrdering_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := []string{"0", "1", "2"}
		f := idFIFO{}
		pushed := map[string][]trace.TimeIndex{}

		n := rapid.IntRange(1, 100).Draw(t, "n")
		for i := 0; i < n; i++ {
			id := rapid.SampledFrom(ids).Draw(t, "id")
			if rapid.Bool().Draw(t, "push") || len(pushed[id]) == 0 {
				start := trace.TimeIndex(i)
				f.push(id, &transaction{start: start})
				pushed[id] = append(pushed[id], start)
			} else {
				got := f.popFront(id)
				want := pushed[id][0]
				pushed[id] = pushed[id][1:]
				assert.NotNil(t, got)
				assert.Equal(t, want, got.start)
			}
		}
	})
}
