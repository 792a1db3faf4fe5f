package stats

import (
	"github.com/busperf/busperf/internal/period"
	"github.com/shopspring/decimal"
)

// BandwidthSample is one point of the windowed-bandwidth timeline.
type BandwidthSample struct {
	Time period.AbsTime
	Rate decimal.Decimal
}

// BandwidthAccumulator finalizes the windowed bandwidth calculation of
// spec §4.5, grounded on MultiChannelBusUsage::end.
type BandwidthAccumulator struct {
	WindowLength uint32
	ClockPeriod  period.AbsTime
	XRate        decimal.Decimal
	YRate        decimal.Decimal
}

// coverage implements transaction_coverage_in_window: the fraction of p
// that falls inside the window [windowStart, windowStart+W). A
// single-instant period counts (as 1) only when it lies strictly inside
// (windowStart, windowStart+W).
func (a *BandwidthAccumulator) coverage(p period.Period, windowStart uint64) float64 {
	winEnd := windowStart + uint64(a.WindowLength)*a.ClockPeriod
	if p.Start == p.End {
		if windowStart < p.Start && p.Start < winEnd {
			return 1.0
		}
		return 0.0
	}
	lo := max64(windowStart, p.Start)
	hi := min64(winEnd, p.End)
	covered := uint64(0)
	if hi > lo {
		covered = hi - lo
	}
	return float64(covered) / float64(p.End-p.Start)
}

// Windows computes the half-overlapping bandwidth timeline over
// cmdToCompletion across every analysis interval (spec §4.5 step 3).
func (a *BandwidthAccumulator) Windows(cmdToCompletion []period.Period, intervals [][2]uint64) []BandwidthSample {
	var out []BandwidthSample
	step := uint64(a.WindowLength) / 2 * a.ClockPeriod
	if step == 0 {
		return out
	}
	for _, iv := range intervals {
		start, end := iv[0], iv[1]
		limit := end + uint64(a.WindowLength)*a.ClockPeriod/2
		for i := start; i < limit; i += step {
			var num float64
			for _, p := range cmdToCompletion {
				num += a.coverage(p, i)
			}
			rate := num / float64(a.WindowLength)
			out = append(out, BandwidthSample{Time: period.AbsTime(i), Rate: decimal.NewFromFloat(rate)})
		}
	}
	return out
}

// AboveXRate returns the fraction of samples whose rate exceeds XRate.
func (a *BandwidthAccumulator) AboveXRate(samples []BandwidthSample) decimal.Decimal {
	return fractionAbove(samples, a.XRate)
}

// BelowYRate returns the fraction of samples whose rate is below YRate.
func (a *BandwidthAccumulator) BelowYRate(samples []BandwidthSample) decimal.Decimal {
	return fractionBelow(samples, a.YRate)
}

func fractionAbove(samples []BandwidthSample, threshold decimal.Decimal) decimal.Decimal {
	if len(samples) == 0 {
		return decimal.Zero
	}
	count := 0
	for _, s := range samples {
		if s.Rate.GreaterThan(threshold) {
			count++
		}
	}
	return decimal.NewFromInt(int64(count)).Div(decimal.NewFromInt(int64(len(samples))))
}

func fractionBelow(samples []BandwidthSample, threshold decimal.Decimal) decimal.Decimal {
	if len(samples) == 0 {
		return decimal.Zero
	}
	count := 0
	for _, s := range samples {
		if s.Rate.LessThan(threshold) {
			count++
		}
	}
	return decimal.NewFromInt(int64(count)).Div(decimal.NewFromInt(int64(len(samples))))
}

// AveragedBandwidth computes count(cmd_to_first_data) normalized by the
// portion of total time not spent in reset, in transactions per clock cycle
// (spec §4.5 step 2).
func AveragedBandwidth(firstDataCount int, totalTime, resetTime uint64, clockPeriod period.AbsTime) decimal.Decimal {
	denom := totalTime - resetTime*clockPeriod
	if denom == 0 {
		return decimal.Zero
	}
	cycles := float64(denom) / float64(clockPeriod)
	return decimal.NewFromFloat(float64(firstDataCount) / cycles)
}

// ErrorRate computes errorCount / (errorCount + correctCount) (spec §4.5
// step 1).
func ErrorRate(errorCount, correctCount int) decimal.Decimal {
	total := errorCount + correctCount
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(errorCount)).Div(decimal.NewFromInt(int64(total)))
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
