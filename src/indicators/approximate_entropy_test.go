package indicators

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

func tradingDates(start time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	d := start
	for i := range dates {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		dates[i] = d
		d = d.AddDate(0, 0, 1)
	}
	return dates
}

func noisySeries(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	series := make([]float64, n)
	for i := range series {
		series[i] = math.Sin(float64(i)/5) + rng.NormFloat64()*0.3
	}
	return series
}

func tolerance(r float64) *float64 {
	return &r
}

func TestComputeApEn(t *testing.T) {
	start := date("2024-01-02")

	t.Run("constant series has zero entropy in every window", func(t *testing.T) {
		series := make([]float64, 60)
		for i := range series {
			series[i] = 0.42
		}

		points, err := ComputeApEn(series, tradingDates(start, 60), NewApEnOptions())

		require.NoError(t, err)
		require.Len(t, points, 11)
		for _, p := range points {
			assert.Equal(t, 0.0, p.Entropy)
		}
	})

	t.Run("output length follows the window count", func(t *testing.T) {
		cases := []struct {
			n, window, step, expected int
		}{
			{n: 60, window: 50, step: 1, expected: 11},
			{n: 60, window: 50, step: 3, expected: 4},
			{n: 50, window: 50, step: 1, expected: 1},
			{n: 49, window: 50, step: 1, expected: 0},
			{n: 100, window: 10, step: 7, expected: 13},
		}

		for _, tc := range cases {
			opts := NewApEnOptions()
			opts.WindowWidth = tc.window
			opts.SlidingStep = tc.step

			points, err := ComputeApEn(noisySeries(tc.n, 1), tradingDates(start, tc.n), opts)

			require.NoError(t, err)
			assert.Len(t, points, tc.expected, "n=%d window=%d step=%d", tc.n, tc.window, tc.step)
			assert.Equal(t, tc.expected, opts.WindowCount(tc.n))
		}
	})

	t.Run("points carry the date and value of the window's last element", func(t *testing.T) {
		series := noisySeries(70, 2)
		dates := tradingDates(start, 70)
		opts := NewApEnOptions()
		opts.SlidingStep = 4

		points, err := ComputeApEn(series, dates, opts)

		require.NoError(t, err)
		for n, p := range points {
			last := n*opts.SlidingStep + opts.WindowWidth - 1
			assert.Equal(t, dates[last], p.Date)
			assert.Equal(t, series[last], p.Skewness)
		}
		for i := 1; i < len(points); i++ {
			assert.False(t, points[i].Date.Before(points[i-1].Date))
		}
	})

	t.Run("hand computed value", func(t *testing.T) {
		series := []float64{1, 2, 1, 2, 1}
		opts := ApEnOptions{WindowWidth: 5, SlidingStep: 1, EmbeddingDim: 1, Tolerance: tolerance(0.5)}

		points, err := ComputeApEn(series, tradingDates(start, 5), opts)

		// m=1: C = 3/5 for the 1s and 2/5 for the 2s; m=2: every vector matches half of the four
		expected := (3*math.Log(0.6)+2*math.Log(0.4))/5 - math.Log(0.5)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.InDelta(t, expected, points[0].Entropy, 1e-12)
	})

	t.Run("tolerance is derived once from the whole series", func(t *testing.T) {
		series := noisySeries(80, 3)
		dates := tradingDates(start, 80)

		r, err := DefaultTolerance(series)
		require.NoError(t, err)

		derived, err := ComputeApEn(series, dates, NewApEnOptions())
		require.NoError(t, err)

		explicit := NewApEnOptions()
		explicit.Tolerance = tolerance(r)
		fixed, err := ComputeApEn(series, dates, explicit)
		require.NoError(t, err)

		assert.Equal(t, fixed, derived)
		for n, p := range derived {
			assert.Equal(t, ApproximateEntropy(series[n:n+50], 2, r), p.Entropy)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		series := noisySeries(90, 4)
		dates := tradingDates(start, 90)

		first, err := ComputeApEn(series, dates, NewApEnOptions())
		require.NoError(t, err)
		second, err := ComputeApEn(series, dates, NewApEnOptions())
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("parallel windows match sequential output", func(t *testing.T) {
		series := noisySeries(120, 5)
		dates := tradingDates(start, 120)

		sequential, err := ComputeApEn(series, dates, NewApEnOptions())
		require.NoError(t, err)

		opts := NewApEnOptions()
		opts.Workers = 4
		parallel, err := ComputeApEn(series, dates, opts)
		require.NoError(t, err)

		assert.Equal(t, sequential, parallel)
	})

	t.Run("entropy is finite for noisy input", func(t *testing.T) {
		points, err := ComputeApEn(noisySeries(100, 6), tradingDates(start, 100), NewApEnOptions())

		require.NoError(t, err)
		for _, p := range points {
			assert.False(t, math.IsNaN(p.Entropy) || math.IsInf(p.Entropy, 0))
		}
	})
}

func TestComputeApEnErrors(t *testing.T) {
	start := date("2024-01-02")

	t.Run("series shorter than m+1", func(t *testing.T) {
		_, err := ComputeApEn([]float64{1, 2}, tradingDates(start, 2), NewApEnOptions())

		var insufficientErr *eventmodels.InsufficientDataError
		require.True(t, errors.As(err, &insufficientErr))
		assert.Equal(t, 2, insufficientErr.Length)
		assert.Equal(t, 3, insufficientErr.Required)
	})

	t.Run("short series above m+1 yields no windows", func(t *testing.T) {
		points, err := ComputeApEn([]float64{1, 2, 3}, tradingDates(start, 3), NewApEnOptions())

		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("misaligned dates", func(t *testing.T) {
		_, err := ComputeApEn(noisySeries(60, 1), tradingDates(start, 59), NewApEnOptions())

		var alignmentErr *eventmodels.DataAlignmentError
		require.True(t, errors.As(err, &alignmentErr))
		assert.Equal(t, 60, alignmentErr.SeriesLength)
		assert.Equal(t, 59, alignmentErr.DatesLength)
	})

	t.Run("invalid options", func(t *testing.T) {
		cases := []ApEnOptions{
			{WindowWidth: 50, SlidingStep: 0, EmbeddingDim: 2},
			{WindowWidth: 2, SlidingStep: 1, EmbeddingDim: 2},
			{WindowWidth: 50, SlidingStep: 1, EmbeddingDim: 0},
			{WindowWidth: 50, SlidingStep: 1, EmbeddingDim: 2, Tolerance: tolerance(-1)},
		}

		for _, opts := range cases {
			_, err := ComputeApEn(noisySeries(60, 1), tradingDates(start, 60), opts)

			var paramErr *eventmodels.InvalidParameterError
			assert.True(t, errors.As(err, &paramErr), "%+v", opts)
		}
	})
}

func TestCorrelationIntegralsIncludeSelfMatch(t *testing.T) {
	vectors := embed([]float64{0, 10, 20, 30}, 2)

	c := correlationIntegrals(vectors, 0.1)

	require.Len(t, c, 3)
	for _, v := range c {
		assert.InDelta(t, 1.0/3.0, v, 1e-12)
	}
	assert.InDelta(t, math.Log(1.0/3.0), phi(c), 1e-12)
}

func TestChebyshev(t *testing.T) {
	assert.Equal(t, 3.0, chebyshev([]float64{1, 5, 2}, []float64{2, 2, 2}))
	assert.Equal(t, 0.0, chebyshev([]float64{1, 1}, []float64{1, 1}))
}
