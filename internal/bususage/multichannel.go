package bususage

import (
	"fmt"

	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/stats"
	"github.com/shopspring/decimal"
)

// MultiChannelBusUsage accumulates AXI (or any command/response-correlated)
// transaction statistics, grounded on
// original_source/libbusperf/src/bus_usage.rs's MultiChannelBusUsage.
type MultiChannelBusUsage struct {
	BusName string

	CmdToCompletion      []period.Period
	CmdToFirstData       []period.Period
	LastDataToCompletion []period.Period
	TransactionDelays    []period.Period
	Errors               []period.AbsTime
	CorrectNum           int

	WindowLength period.Cycles
	ClockPeriod  period.AbsTime
	XRate        decimal.Decimal
	YRate        decimal.Decimal
	Time         period.AbsTime
	Intervals    [][2]uint64

	ErrorRate           decimal.Decimal
	AveragedBandwidth   decimal.Decimal
	BandwidthWindows    []stats.BandwidthSample
	BandwidthAboveXRate decimal.Decimal
	BandwidthBelowYRate decimal.Decimal
}

// NewMultiChannelBusUsage builds an empty accumulator; fill it with
// AddTransaction then call End.
func NewMultiChannelBusUsage(name string, windowLength period.Cycles, clockPeriod period.AbsTime, xRate, yRate decimal.Decimal) *MultiChannelBusUsage {
	return &MultiChannelBusUsage{
		BusName:      name,
		WindowLength: windowLength,
		ClockPeriod:  clockPeriod,
		XRate:        xRate,
		YRate:        yRate,
	}
}

// AddTransaction folds one reconstructed AXI transaction into the
// accumulator (spec §4.3a's output feeds this directly).
func (u *MultiChannelBusUsage) AddTransaction(start, completion, lastWrite, firstData period.AbsTime, resp string, next period.AbsTime) {
	u.CmdToCompletion = append(u.CmdToCompletion, period.New(start, completion, u.ClockPeriod))
	u.CmdToFirstData = append(u.CmdToFirstData, period.New(start, firstData, u.ClockPeriod))
	u.LastDataToCompletion = append(u.LastDataToCompletion, period.New(lastWrite, completion, u.ClockPeriod))
	if hasCorrectSuffix(resp) {
		u.CorrectNum++
	} else {
		u.Errors = append(u.Errors, start)
	}
	u.TransactionDelays = append(u.TransactionDelays, period.New(completion, next, u.ClockPeriod))
}

// hasCorrectSuffix implements spec §4.3b: a response is "correct" iff its
// bit string ends in "00" or "01".
func hasCorrectSuffix(resp string) bool {
	if len(resp) < 2 {
		return false
	}
	suffix := resp[len(resp)-2:]
	return suffix == "00" || suffix == "01"
}

// AddTime accumulates the total analyzed time span, across intervals.
func (u *MultiChannelBusUsage) AddTime(t period.AbsTime) { u.Time += t }

// End finalizes the error rate, averaged bandwidth and windowed bandwidth
// curve (spec §4.5), grounded on MultiChannelBusUsage::end.
func (u *MultiChannelBusUsage) End(timeInReset period.Cycles, intervals [][2]uint64) {
	u.Intervals = intervals
	u.ErrorRate = stats.ErrorRate(len(u.Errors), u.CorrectNum)
	u.AveragedBandwidth = stats.AveragedBandwidth(len(u.CmdToFirstData), uint64(u.Time), uint64(timeInReset), u.ClockPeriod)

	acc := &stats.BandwidthAccumulator{WindowLength: uint32(u.WindowLength), ClockPeriod: u.ClockPeriod, XRate: u.XRate, YRate: u.YRate}
	u.BandwidthWindows = acc.Windows(u.CmdToCompletion, intervals)
	u.BandwidthAboveXRate = acc.AboveXRate(u.BandwidthWindows)
	u.BandwidthBelowYRate = acc.BelowYRate(u.BandwidthWindows)
}

// Statistics implements spec §4.6's uniform statistic projection.
func (u *MultiChannelBusUsage) Statistics(skipped map[string]bool) []stats.Statistic {
	out := []stats.Statistic{
		stats.NewBucketStat(stats.NewBucketStatistic("Cmd to completion", "Number of clock cycles from issuing a command to receiving a response.", u.CmdToCompletion, u.ClockPeriod), ""),
		stats.NewBucketStat(stats.NewBucketStatistic("Cmd to first data", "Number of clock cycles from issuing a command to first data being transferred.", u.CmdToFirstData, u.ClockPeriod), ""),
		stats.NewBucketStat(stats.NewBucketStatistic("Last data to completion", "Number of clock cycles from last data being transferred to transaction end.", u.LastDataToCompletion, u.ClockPeriod), ""),
		stats.NewBucketStat(stats.NewBucketStatistic("Transaction delays", "Delays between transactions in clock cycles", u.TransactionDelays, u.ClockPeriod), ""),
	}
	if !skipped["error_rate"] {
		display := "Invalid"
		if !u.ErrorRate.IsZero() || len(u.Errors)+u.CorrectNum > 0 {
			display = fmt.Sprintf("%.2f", u.ErrorRate.InexactFloat64()*100.0)
		}
		out = append(out, stats.NewTimelineStat("Error rate [%]", "Percentage of transactions that resulted in error.", &stats.TimelineStatistic{
			Display: display,
		}))
	}

	values := make([][2]float64, 0, len(u.BandwidthWindows))
	var lines []float64
	for _, iv := range u.Intervals {
		lines = append(lines, float64(iv[0]), float64(iv[1]))
	}
	for _, s := range u.BandwidthWindows {
		values = append(values, [2]float64{float64(s.Time), s.Rate.InexactFloat64()})
	}
	out = append(out, stats.NewTimelineStat("Bandwidth [t/clk]", "Averaged bandwidth in transactions per clock cycle.", &stats.TimelineStatistic{
		Values:        values,
		VerticalLines: lines,
		Display:       fmt.Sprintf("%.4f", u.AveragedBandwidth.InexactFloat64()),
	}))

	lastTime := 0.0
	if len(u.BandwidthWindows) > 0 {
		lastTime = float64(u.BandwidthWindows[len(u.BandwidthWindows)-1].Time)
	}
	xRate, _ := u.XRate.Float64()
	yRate, _ := u.YRate.Float64()
	out = append(out, stats.NewTimelineStat("Bandwidth above x rate [%]", "Percentage of time during which bandwidth was higher than x rate.", &stats.TimelineStatistic{
		Values:  [][2]float64{{0, xRate}, {lastTime, xRate}},
		Display: fmt.Sprintf("%.2f", u.BandwidthAboveXRate.InexactFloat64()*100.0),
	}))
	out = append(out, stats.NewTimelineStat("Bandwidth below y rate [%]", "Percentage of time during which bandwidth was lower than y rate.", &stats.TimelineStatistic{
		Values:  [][2]float64{{0, yRate}, {lastTime, yRate}},
		Display: fmt.Sprintf("%.2f", u.BandwidthBelowYRate.InexactFloat64()*100.0),
	}))

	return out
}
