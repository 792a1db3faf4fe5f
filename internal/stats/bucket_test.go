package stats

import (
	"testing"

	"github.com/busperf/busperf/internal/period"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBucketNum(t *testing.T) {
	assert.Equal(t, int32(0), BucketNum(0))
	assert.Equal(t, int32(1), BucketNum(1))
	assert.Equal(t, int32(2), BucketNum(2))
	assert.Equal(t, int32(2), BucketNum(3))
	assert.Equal(t, int32(3), BucketNum(4))
	assert.Equal(t, int32(-2), BucketNum(-2))
}

func TestBucketLabel(t *testing.T) {
	assert.Equal(t, "0", BucketLabel(0))
	assert.Equal(t, "1", BucketLabel(1))
	assert.Equal(t, "2..3", BucketLabel(2))
	assert.Equal(t, "512..1023", BucketLabel(10))
	assert.Equal(t, "2^41+", BucketLabel(41))
	assert.Equal(t, "-1", BucketLabel(-1))
}

func TestBucketStatistic_LinearAndLogAgreeOnTotal(t *testing.T) {
	data := []period.Period{
		{Start: 0, End: 0, Duration: 1},
		{Start: 0, End: 2, Duration: 2},
		{Start: 0, End: 6, Duration: 4},
		{Start: 0, End: 6, Duration: 4},
	}
	b := NewBucketStatistic("test", "", data, 2)

	linearTotal := 0
	for _, c := range b.Linear() {
		linearTotal += c
	}
	logTotal := 0
	for _, c := range b.Logarithmic() {
		logTotal += c
	}
	assert.Equal(t, len(data), linearTotal)
	assert.Equal(t, len(data), logTotal)
}

func TestBucketStatistic_DrillDown(t *testing.T) {
	data := []period.Period{
		{Start: 0, End: 0, Duration: 1},
		{Start: 0, End: 2, Duration: 2},
		{Start: 0, End: 2, Duration: 2},
	}
	b := NewBucketStatistic("test", "", data, 2)
	assert.Len(t, b.DataOfValue(2), 2)
	assert.Len(t, b.DataForBucket(BucketNum(2)), 2)
}

func TestBucketIdempotence_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(t, "n")
		var data []period.Period
		for i := 0; i < n; i++ {
			d := rapid.Int32Range(1, 200).Draw(t, "d")
			data = append(data, period.WithDuration(0, d, 2))
		}
		b := NewBucketStatistic("p", "", data, 2)

		linearTotal := 0
		for _, c := range b.Linear() {
			linearTotal += c
		}
		logTotal := 0
		for _, c := range b.Logarithmic() {
			logTotal += c
		}
		assert.Equal(t, len(data), linearTotal)
		assert.Equal(t, len(data), logTotal)
	})
}
