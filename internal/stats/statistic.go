package stats

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StatKind tags which concrete statistic a Statistic carries.
type StatKind int

const (
	KindPercentage StatKind = iota
	KindBucket
	KindTimeline
)

// Statistic is the tagged union spec §4.6 calls for: every bus usage type
// exposes its results as a uniform list of these, regardless of whether the
// underlying value is a percentage split, a bucketed distribution, or a
// timeline.
type Statistic struct {
	Kind        StatKind
	Name        string
	Description string

	Percentage *PercentageStatistic
	Bucket     *BucketStatistic
	Timeline   *TimelineStatistic
}

// PercentageStatistic compares labeled values by their relative proportion
// (e.g. cycle-type counts).
type PercentageStatistic struct {
	DataLabels []DataLabel
}

// DataLabel is one (value, label) pair of a PercentageStatistic.
type DataLabel struct {
	Value decimal.Decimal
	Label string
}

// Display renders "label: value, label: value, ...".
func (p *PercentageStatistic) Display() string {
	out := ""
	for i, dl := range p.DataLabels {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %s", dl.Label, dl.Value.String())
	}
	return out
}

// TimelineStatistic describes a value continuously changing over time, e.g.
// the bandwidth curve or the error rate display.
type TimelineStatistic struct {
	Values        [][2]float64
	VerticalLines []float64
	Display       string
}

// NewPercentageStat builds a percentage-kind Statistic.
func NewPercentageStat(name, description string, labels []DataLabel) Statistic {
	return Statistic{Kind: KindPercentage, Name: name, Description: description, Percentage: &PercentageStatistic{DataLabels: labels}}
}

// NewBucketStat builds a bucket-kind Statistic.
func NewBucketStat(b *BucketStatistic, description string) Statistic {
	return Statistic{Kind: KindBucket, Name: b.Name, Description: description, Bucket: b}
}

// NewTimelineStat builds a timeline-kind Statistic.
func NewTimelineStat(name, description string, t *TimelineStatistic) Statistic {
	return Statistic{Kind: KindTimeline, Name: name, Description: description, Timeline: t}
}
