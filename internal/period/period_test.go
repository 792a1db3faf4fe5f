package period

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestWithDuration_Invariant(t *testing.T) {
	p := WithDuration(100, 5, 2)
	assert.Equal(t, AbsTime(108), p.End)
	assert.True(t, p.End >= p.Start)
	assert.Equal(t, int64(p.End-p.Start), int64(p.Duration-1)*2)
}

func TestNew_FlooredSigned(t *testing.T) {
	p := New(10, 25, 4)
	assert.Equal(t, Cycles(3), p.Duration) // (25-10)/4 = 3.75 -> 3
}

func TestAddCycles(t *testing.T) {
	p := WithDuration(0, 1, 2)
	p.AddCycle(2)
	assert.Equal(t, Cycles(2), p.Duration)
	assert.Equal(t, AbsTime(2), p.End)

	p.AddCycles(3, 2)
	assert.Equal(t, Cycles(5), p.Duration)
	assert.Equal(t, AbsTime(8), p.End)
}

func TestPeriod_WellFormed_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := rapid.Uint64Range(0, 1_000_000).Draw(t, "start")
		duration := rapid.Int32Range(1, 1000).Draw(t, "duration")
		clk := rapid.Uint64Range(1, 100).Draw(t, "clk")

		p := WithDuration(start, duration, clk)
		assert.GreaterOrEqual(t, p.End, p.Start)
		assert.Equal(t, int64(p.End-p.Start), int64(p.Duration-1)*int64(clk))
	})
}
