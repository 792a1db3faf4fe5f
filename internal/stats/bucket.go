// Package stats implements the statistic model of spec §4.6: bucketed
// period distributions and the windowed bandwidth calculation of spec §4.5,
// grounded on original_source/libbusperf/src/bus_usage.rs's
// BucketsStatistic and MultiChannelBusUsage::end.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/busperf/busperf/internal/period"
)

// BucketStatistic groups a list of periods by duration, offering both a
// linear (exact-duration) and a logarithmic (power-of-two bucket) view.
type BucketStatistic struct {
	Name        string
	Description string
	Data        []period.Period
	ClockPeriod period.AbsTime
}

// NewBucketStatistic builds a bucket statistic over data.
func NewBucketStatistic(name, description string, data []period.Period, clockPeriod period.AbsTime) *BucketStatistic {
	return &BucketStatistic{Name: name, Description: description, Data: data, ClockPeriod: clockPeriod}
}

// Linear returns duration -> count, the exact-duration view (spec §4.6).
func (b *BucketStatistic) Linear() map[period.Cycles]int {
	out := map[period.Cycles]int{}
	for _, p := range b.Data {
		out[p.Duration]++
	}
	return out
}

// BucketNum computes the logarithmic bucket index of a duration:
// 0 if d == 0, else sign(d) * (floor(log2(|d|)) + 1).
func BucketNum(d period.Cycles) int32 {
	if d == 0 {
		return 0
	}
	abs := d
	sign := int32(1)
	if abs < 0 {
		abs = -abs
		sign = -1
	}
	return sign * (int32(math.Log2(float64(abs))) + 1)
}

// Logarithmic returns bucket -> count, the power-of-two view (spec §4.6).
func (b *BucketStatistic) Logarithmic() map[int32]int {
	out := map[int32]int{}
	for _, p := range b.Data {
		out[BucketNum(p.Duration)]++
	}
	return out
}

// BucketsCount is the number of distinct logarithmic buckets populated.
func (b *BucketStatistic) BucketsCount() int {
	return len(b.Logarithmic())
}

// DataOfValue returns every period with the exact given duration
// (drill-down by value, spec §4.6).
func (b *BucketStatistic) DataOfValue(value period.Cycles) []period.Period {
	var out []period.Period
	for _, p := range b.Data {
		if p.Duration == value {
			out = append(out, p)
		}
	}
	return out
}

// DataForBucket returns every period whose logarithmic bucket is bucketNum
// (drill-down by bucket, spec §4.6).
func (b *BucketStatistic) DataForBucket(bucketNum int32) []period.Period {
	var out []period.Period
	for _, p := range b.Data {
		if BucketNum(p.Duration) == bucketNum {
			out = append(out, p)
		}
	}
	return out
}

// Display renders "name: min-max clock cycles", or "name: no data" when
// empty.
func (b *BucketStatistic) Display() string {
	if len(b.Data) == 0 {
		return fmt.Sprintf("%s: no data", b.Name)
	}
	min, max := b.Data[0].Duration, b.Data[0].Duration
	for _, p := range b.Data[1:] {
		if p.Duration < min {
			min = p.Duration
		}
		if p.Duration > max {
			max = p.Duration
		}
	}
	return fmt.Sprintf("%s: %d-%d clock cycles", b.Name, min, max)
}

// BucketLabel renders the human-readable range a logarithmic bucket index
// covers (spec §4.6):
//
//	0, 1            -> literal
//	i in [2,10]     -> "2^(i-1)..2^i-1"
//	i in [11,20]    -> same range, in kilo-units
//	i in [21,40]    -> same range, in mega-units
//	i >= 41         -> "2^i+"
//
// Negative i mirrors the positive label with a leading "-".
func BucketLabel(i int32) string {
	if i < 0 {
		return "-" + BucketLabel(-i)
	}
	switch {
	case i == 0:
		return "0"
	case i == 1:
		return "1"
	case i >= 2 && i <= 10:
		lo, hi := uint64(1)<<(i-1), uint64(1)<<i-1
		return fmt.Sprintf("%d..%d", lo, hi)
	case i >= 11 && i <= 20:
		lo, hi := scaledRange(i, 1024)
		return fmt.Sprintf("%sK..%sK", lo, hi)
	case i >= 21 && i <= 40:
		lo, hi := scaledRange(i, 1024*1024)
		return fmt.Sprintf("%sM..%sM", lo, hi)
	default:
		return fmt.Sprintf("2^%d+", i)
	}
}

func scaledRange(i int32, unit uint64) (string, string) {
	lo, hi := uint64(1)<<(i-1), uint64(1)<<i-1
	loScaled := float64(lo) / float64(unit)
	hiScaled := float64(hi) / float64(unit)
	return trimFloat(loScaled), trimFloat(hiScaled)
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// SortedBucketKeys returns the logarithmic bucket indices present in m, in
// ascending order, for deterministic rendering.
func SortedBucketKeys(m map[int32]int) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
