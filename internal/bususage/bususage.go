// Package bususage assembles the per-bus accumulated results (spec §3, §4.4,
// §4.5) into the BusUsage tagged union: SingleChannelBusUsage for
// ReadyValid/CreditValid/AHB/APB buses, MultiChannelBusUsage for AXI read
// and write buses.
package bususage

import (
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/statemachine"
	"github.com/busperf/busperf/internal/stats"
	"github.com/shopspring/decimal"
)

// Kind tags which concrete usage a BusUsage carries.
type Kind int

const (
	KindSingleChannel Kind = iota
	KindMultiChannel
)

// BusUsage is the tagged union spec §3 names: every analyzer run produces
// exactly one of these.
type BusUsage struct {
	Kind          Kind
	SingleChannel *SingleChannelBusUsage
	MultiChannel  *MultiChannelBusUsage
}

// Name returns the bus name regardless of which variant is populated.
func (u *BusUsage) Name() string {
	switch u.Kind {
	case KindSingleChannel:
		return u.SingleChannel.BusName
	default:
		return u.MultiChannel.BusName
	}
}

// Statistics returns the uniform Statistic list for this bus's result
// (spec §4.6), regardless of variant.
func (u *BusUsage) Statistics(skipped map[string]bool) []stats.Statistic {
	switch u.Kind {
	case KindSingleChannel:
		return u.SingleChannel.Statistics()
	default:
		return u.MultiChannel.Statistics(skipped)
	}
}

// SingleChannelBusUsage accumulates the cycle-type tally and burst/delay
// reconstruction for a ReadyValid, CreditValid, AHB or APB bus (spec §3,
// §4.4), grounded on
// original_source/libbusperf/src/bus_usage.rs's SingleChannelBusUsage.
type SingleChannelBusUsage struct {
	BusName string

	Busy          int
	Backpressure  int
	NoData        int
	NoTransaction int
	Free          int
	Reset         int

	MaxBurstDelay period.Cycles
	ClockPeriod   period.AbsTime

	state *statemachine.State
}

// NewSingleChannelBusUsage builds an accumulator with every tally at zero.
func NewSingleChannelBusUsage(name string, maxBurstDelay period.Cycles, clockPeriod period.AbsTime) *SingleChannelBusUsage {
	return &SingleChannelBusUsage{
		BusName:       name,
		MaxBurstDelay: maxBurstDelay,
		ClockPeriod:   clockPeriod,
		state:         statemachine.NewState(maxBurstDelay, clockPeriod),
	}
}

// AddCycle folds one classified cycle into the tallies and the burst/delay
// reconstruction.
func (u *SingleChannelBusUsage) AddCycle(t period.CycleType) {
	switch t {
	case period.Busy:
		u.Busy++
	case period.Backpressure:
		u.Backpressure++
	case period.NoData:
		u.NoData++
	case period.Free:
		u.Free++
	case period.Reset:
		u.Reset++
	default: // NoTransaction and Unknown both fold into no_transaction
		// (spec §9 open question: the source drops malformed cycles into
		// the idle bucket; this mirrors that rather than inventing a
		// dedicated counter).
		u.NoTransaction++
	}
	u.state.AddCycle(t)
}

// BurstLengths returns the reconstructed burst periods.
func (u *SingleChannelBusUsage) BurstLengths() []period.Period { return u.state.BurstLengths }

// TransactionDelays returns the reconstructed delay periods.
func (u *SingleChannelBusUsage) TransactionDelays() []period.Period {
	return u.state.TransactionDelays
}

// Current reports the in-progress burst/delay state.
func (u *SingleChannelBusUsage) Current() statemachine.Calculating { return u.state.Current() }

// Statistics implements spec §4.6's uniform statistic projection.
func (u *SingleChannelBusUsage) Statistics() []stats.Statistic {
	labels := []stats.DataLabel{
		{Value: decimal.NewFromInt(int64(u.Busy)), Label: "Busy"},
		{Value: decimal.NewFromInt(int64(u.Backpressure)), Label: "Backpressure"},
		{Value: decimal.NewFromInt(int64(u.NoData)), Label: "No data"},
		{Value: decimal.NewFromInt(int64(u.NoTransaction)), Label: "No transaction"},
		{Value: decimal.NewFromInt(int64(u.Free)), Label: "Free"},
		{Value: decimal.NewFromInt(int64(u.Reset)), Label: "Reset"},
	}
	return []stats.Statistic{
		stats.NewPercentageStat("Cycles", "How many clock cycles the bus spent in each state", labels),
		stats.NewBucketStat(
			stats.NewBucketStatistic("Transaction delays", "Delays between transactions in clock cycles", u.TransactionDelays(), u.ClockPeriod),
			"Delays between transactions in clock cycles",
		),
		stats.NewBucketStat(
			stats.NewBucketStatistic("Burst lengths", "Burst lengths in clock cycles", u.BurstLengths(), u.ClockPeriod),
			"Burst lengths in clock cycles",
		),
	}
}

// TotalCycles is the cycle-conservation total (spec §8 invariant #1).
func (u *SingleChannelBusUsage) TotalCycles() int {
	return u.Busy + u.Backpressure + u.NoData + u.NoTransaction + u.Free + u.Reset
}
