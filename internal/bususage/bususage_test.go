package bususage

import (
	"testing"

	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/statemachine"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSingleChannelBusUsage_TallyAndBurstDelay(t *testing.T) {
	u := NewSingleChannelBusUsage("apb0", 0, 2)
	seq := []period.CycleType{
		period.Busy, period.Busy,
		period.Free,
		period.Busy,
	}
	for _, c := range seq {
		u.AddCycle(c)
	}
	assert.Equal(t, 3, u.Busy)
	assert.Equal(t, 1, u.Free)
	assert.Equal(t, 4, u.TotalCycles())
	assert.Equal(t, statemachine.Burst, u.Current())
	assert.Len(t, u.BurstLengths(), 2)
	assert.Len(t, u.TransactionDelays(), 1)
}

func TestSingleChannelBusUsage_BurstDelayReconstruction(t *testing.T) {
	// clock_period=10: busy,busy,free,busy,busy,busy -> one burst of 2,
	// one delay of 1, one burst of 3.
	u := NewSingleChannelBusUsage("apb0", 0, 10)
	seq := []period.CycleType{
		period.Busy, period.Busy,
		period.Free,
		period.Busy, period.Busy, period.Busy,
	}
	for _, c := range seq {
		u.AddCycle(c)
	}

	wantBursts := []period.Period{
		{Start: 0, End: 10, Duration: 2},
		{Start: 30, End: 50, Duration: 3},
	}
	wantDelays := []period.Period{
		{Start: 20, End: 20, Duration: 1},
	}
	if diff := cmp.Diff(wantBursts, u.BurstLengths()); diff != "" {
		t.Errorf("BurstLengths() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantDelays, u.TransactionDelays()); diff != "" {
		t.Errorf("TransactionDelays() mismatch (-want +got):\n%s", diff)
	}
}

func TestSingleChannelBusUsage_UnknownFoldsIntoNoTransaction(t *testing.T) {
	u := NewSingleChannelBusUsage("b", 0, 2)
	u.AddCycle(period.Unknown)
	u.AddCycle(period.NoTransaction)
	assert.Equal(t, 2, u.NoTransaction)
}

func TestMultiChannelBusUsage_AddTransaction(t *testing.T) {
	u := NewMultiChannelBusUsage("axi0", 4, 2, decimal.NewFromFloat(0.5), decimal.NewFromFloat(0.1))
	// S6-style transaction: start=10, first_data=20, last_data=40, completion=40
	u.AddTransaction(10, 40, 40, 20, "00", 60)
	assert.Equal(t, 1, u.CorrectNum)
	assert.Empty(t, u.Errors)

	u.AddTransaction(15, 45, 45, 25, "10", 70)
	assert.Equal(t, 1, u.CorrectNum)
	assert.Equal(t, []period.AbsTime{15}, u.Errors)
}
