package handshake

import (
	"testing"

	"github.com/busperf/busperf/internal/trace"
	"github.com/stretchr/testify/assert"
)

func TestReadyValidTransactionIterator_Basic(t *testing.T) {
	// clock rises at 2, 4, 6, 8, 10
	clk := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(0)},
		{Time: 2, Value: trace.Bit(1)},
		{Time: 3, Value: trace.Bit(0)},
		{Time: 4, Value: trace.Bit(1)},
		{Time: 5, Value: trace.Bit(0)},
		{Time: 6, Value: trace.Bit(1)},
		{Time: 7, Value: trace.Bit(0)},
		{Time: 8, Value: trace.Bit(1)},
		{Time: 9, Value: trace.Bit(0)},
		{Time: 10, Value: trace.Bit(1)},
	}
	// ready high the whole time from time 1
	ready := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(0)},
		{Time: 1, Value: trace.Bit(1)},
	}
	// valid high from time 1 to time 5, low from 5 to 7, high again from 7
	valid := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(0)},
		{Time: 1, Value: trace.Bit(1)},
		{Time: 5, Value: trace.Bit(0)},
		{Time: 7, Value: trace.Bit(1)},
	}

	it := NewReadyValidTransactionIterator(clk, ready, valid, 10)

	var got []trace.TimeIndex
	for {
		time, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, time)
	}

	// first firing at the clock edge after both are 1 (edge 2); valid drops
	// at 5 so the edge at 6 must be skipped, and firing resumes once valid
	// returns to 1 at 7, re-synced to the next clock edge strictly after it
	// (edge 8).
	assert.Equal(t, []trace.TimeIndex{2, 4, 8, 10}, got)
}

func TestReadyValidTransactionIterator_NeverValid(t *testing.T) {
	clk := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(0)},
		{Time: 2, Value: trace.Bit(1)},
	}
	ready := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(1)},
	}
	valid := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(0)},
	}

	it := NewReadyValidTransactionIterator(clk, ready, valid, 10)
	_, ok := it.Next()
	assert.False(t, ok)
}
