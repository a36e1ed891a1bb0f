package downsample

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pt struct {
	idx int
	v   float64
}

func yOf(p pt) float64 { return p.v }

func series(values ...float64) []pt {
	out := make([]pt, len(values))
	for i, v := range values {
		out[i] = pt{idx: i, v: v}
	}
	return out
}

func synthetic(n int) []pt {
	out := make([]pt, n)
	for i := range out {
		out[i] = pt{idx: i, v: math.Sin(float64(i)/7)*50 + float64(i%13)}
	}
	return out
}

func indices(points []pt) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.idx
	}
	return out
}

// countingIterator 记录读取次数，读完之后继续 Next 视为重复消费
type countingIterator struct {
	*SliceIterator[pt]
	reads     int
	exhausted int
}

func (c *countingIterator) Next() bool {
	ok := c.SliceIterator.Next()
	if ok {
		c.reads++
	} else {
		c.exhausted++
	}
	return ok
}

type failingIterator struct {
	*SliceIterator[pt]
}

var errBroken = errors.New("cursor broken")

func (f *failingIterator) Err() error { return errBroken }

func TestDownsample_IdentityWhenThresholdNotExceeded(t *testing.T) {
	points := synthetic(50)
	for _, threshold := range []int{50, 51, 1000} {
		got, err := Downsample(points, threshold, yOf)
		require.NoError(t, err)
		assert.Equal(t, points, got)
	}

	// 少于 3 个点也不做任何处理
	two := series(1, 2)
	got, err := Downsample(two, 2, yOf)
	require.NoError(t, err)
	assert.Equal(t, two, got)
}

func TestDownsample_Empty(t *testing.T) {
	for _, threshold := range []int{1, 2, 3, 100} {
		got, err := Downsample([]pt{}, threshold, yOf)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = DownsampleStream[pt](NewSliceIterator([]pt{}), 0, threshold, yOf)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestDownsample_InvalidThreshold(t *testing.T) {
	for _, threshold := range []int{0, -1} {
		_, err := Downsample(synthetic(10), threshold, yOf)
		assert.ErrorIs(t, err, ErrInvalidThreshold)

		_, err = DownsampleStream[pt](NewSliceIterator(synthetic(10)), 10, threshold, yOf)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	}
}

func TestDownsampleStream_NegativeCount(t *testing.T) {
	_, err := DownsampleStream[pt](NewSliceIterator(synthetic(10)), -1, 5, yOf)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestDownsample_ThousandPointsToHundred(t *testing.T) {
	points := synthetic(1000)
	got, err := Downsample(points, 100, yOf)
	require.NoError(t, err)
	require.Len(t, got, 100)
	assert.Equal(t, 0, got[0].idx)
	assert.Equal(t, 999, got[99].idx)

	// 输出保持时间顺序
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].idx, got[i].idx)
	}
}

func TestDownsample_LengthAndEndpoints(t *testing.T) {
	for _, n := range []int{3, 4, 10, 37, 256} {
		points := synthetic(n)
		for threshold := 2; threshold < n; threshold++ {
			got, err := Downsample(points, threshold, yOf)
			require.NoError(t, err)
			require.Len(t, got, threshold, "n=%d threshold=%d", n, threshold)
			assert.Equal(t, points[0], got[0])
			assert.Equal(t, points[n-1], got[threshold-1])
		}
	}
}

func TestDownsample_ThresholdOneKeepsFirst(t *testing.T) {
	got, err := Downsample(synthetic(10), 1, yOf)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, indices(got))
}

func TestDownsample_PicksLargestTriangle(t *testing.T) {
	points := series(0, 1, 10, 2, 3, 0, 8, 1)
	got, err := Downsample(points, 4, yOf)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 6, 7}, indices(got))
}

func TestDownsample_TiesResolveToFirstPoint(t *testing.T) {
	points := series(0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	got, err := Downsample(points, 5, yOf)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3, 6, 9}, indices(got))
}

func TestDownsampleStream_MatchesBuffered(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 5, 17, 100, 1000} {
		points := synthetic(n)
		for _, threshold := range []int{1, 2, 3, 4, 7, 50, 100, 2000} {
			want, err := Downsample(points, threshold, yOf)
			require.NoError(t, err)

			got, err := DownsampleStream[pt](NewSliceIterator(points), n, threshold, yOf)
			require.NoError(t, err)
			assert.Equal(t, indices(want), indices(got), "n=%d threshold=%d", n, threshold)
		}
	}
}

func TestDownsampleStream_ConsumesInputExactlyOnce(t *testing.T) {
	for _, threshold := range []int{10, 500, 1000} {
		it := &countingIterator{SliceIterator: NewSliceIterator(synthetic(500))}
		got, err := DownsampleStream[pt](it, 500, threshold, yOf)
		require.NoError(t, err)
		assert.Equal(t, 500, it.reads)
		assert.Equal(t, 1, it.exhausted)
		if threshold >= 500 {
			assert.Len(t, got, 500)
		} else {
			assert.Len(t, got, threshold)
		}
	}
}

func TestDownsampleStream_PropagatesCursorError(t *testing.T) {
	it := &failingIterator{SliceIterator: NewSliceIterator(synthetic(20))}
	_, err := DownsampleStream[pt](it, 20, 5, yOf)
	assert.ErrorIs(t, err, errBroken)

	it = &failingIterator{SliceIterator: NewSliceIterator(synthetic(20))}
	_, err = DownsampleStream[pt](it, 20, 50, yOf)
	assert.ErrorIs(t, err, errBroken)
}

func TestDownsampleStream_LongerThanCountKeepsRealLastPoint(t *testing.T) {
	points := synthetic(30)
	got, err := DownsampleStream[pt](NewSliceIterator(points), 20, 5, yOf)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, 29, got[len(got)-1].idx)
}

func TestMap(t *testing.T) {
	it := Map[pt, int](NewSliceIterator(series(3, 4, 5)), func(p pt) int { return int(p.v) * 2 })
	var got []int
	for it.Next() {
		got = append(got, it.Value())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []int{6, 8, 10}, got)
}
