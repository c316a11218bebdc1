package indicators

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

// ToleranceScale is the fraction of the series standard deviation used as the
// similarity tolerance when none is supplied.
const ToleranceScale = 0.15

type ApEnOptions struct {
	WindowWidth  int
	SlidingStep  int
	EmbeddingDim int
	// Tolerance is derived from the whole series when nil.
	Tolerance *float64
	// Workers > 1 computes windows concurrently. Output order is unchanged.
	Workers int
}

func NewApEnOptions() ApEnOptions {
	return ApEnOptions{
		WindowWidth:  eventmodels.DefaultWindowWidth,
		SlidingStep:  eventmodels.DefaultSlidingStep,
		EmbeddingDim: eventmodels.DefaultEmbeddingDim,
		Workers:      eventmodels.DefaultWorkers,
	}
}

func NewApEnOptionsFromConfig(c eventmodels.EntropyConfigYAML) ApEnOptions {
	return ApEnOptions{
		WindowWidth:  c.WindowWidth,
		SlidingStep:  c.SlidingStep,
		EmbeddingDim: c.EmbeddingDim,
		Tolerance:    c.Tolerance,
		Workers:      c.Workers,
	}
}

func (o ApEnOptions) Validate() error {
	if o.EmbeddingDim < 1 {
		return &eventmodels.InvalidParameterError{Name: "embeddingDim", Value: o.EmbeddingDim}
	}

	if o.WindowWidth < o.EmbeddingDim+1 {
		return &eventmodels.InvalidParameterError{Name: "windowWidth", Value: o.WindowWidth}
	}

	if o.SlidingStep < 1 {
		return &eventmodels.InvalidParameterError{Name: "slidingStep", Value: o.SlidingStep}
	}

	if o.Tolerance != nil && (*o.Tolerance < 0 || math.IsNaN(*o.Tolerance)) {
		return &eventmodels.InvalidParameterError{Name: "tolerance", Value: *o.Tolerance}
	}

	return nil
}

// WindowCount returns floor((n-W)/step)+1, or 0 when the series is shorter than one window.
func (o ApEnOptions) WindowCount(n int) int {
	if n < o.WindowWidth {
		return 0
	}

	return (n-o.WindowWidth)/o.SlidingStep + 1
}

// DefaultTolerance returns 0.15 times the population standard deviation of the series.
func DefaultTolerance(series []float64) (float64, error) {
	sd, err := stats.StandardDeviationPopulation(series)
	if err != nil {
		return 0, fmt.Errorf("DefaultTolerance: failed to calculate the standard deviation: %w", err)
	}

	return ToleranceScale * sd, nil
}

// ComputeApEn slides a window over series and returns the approximate entropy
// of each window, aligned with the date of the window's last element.
func ComputeApEn(series []float64, dates []time.Time, opts ApEnOptions) ([]eventmodels.EntropyPoint, error) {
	if len(series) != len(dates) {
		return nil, &eventmodels.DataAlignmentError{SeriesLength: len(series), DatesLength: len(dates)}
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("ComputeApEn: %w", err)
	}

	m := opts.EmbeddingDim
	if len(series) < m+1 {
		return nil, &eventmodels.InsufficientDataError{Length: len(series), Required: m + 1}
	}

	var r float64
	if opts.Tolerance != nil {
		r = *opts.Tolerance
	} else {
		var err error
		if r, err = DefaultTolerance(series); err != nil {
			return nil, fmt.Errorf("ComputeApEn: %w", err)
		}
	}

	numWindows := opts.WindowCount(len(series))
	points := make([]eventmodels.EntropyPoint, numWindows)

	computeWindow := func(n int) {
		start := n * opts.SlidingStep
		end := start + opts.WindowWidth
		points[n] = eventmodels.EntropyPoint{
			Date:     dates[end-1],
			Entropy:  ApproximateEntropy(series[start:end], m, r),
			Skewness: series[end-1],
		}
	}

	if opts.Workers <= 1 || numWindows <= 1 {
		for n := 0; n < numWindows; n++ {
			computeWindow(n)
		}
		return points, nil
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for n := 0; n < numWindows; n++ {
		g.Go(func() error {
			computeWindow(n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ComputeApEn: %w", err)
	}

	return points, nil
}

// ApproximateEntropy returns Phi(m) - Phi(m+1) for a single window.
func ApproximateEntropy(window []float64, m int, r float64) float64 {
	phiM := phi(correlationIntegrals(embed(window, m), r))
	phiM1 := phi(correlationIntegrals(embed(window, m+1), r))
	return phiM - phiM1
}

// embed returns the overlapping sub-sequences window[i:i+m]. The vectors share
// the window's backing array.
func embed(window []float64, m int) [][]float64 {
	count := len(window) - m + 1
	if count <= 0 {
		return nil
	}

	vectors := make([][]float64, count)
	for i := range vectors {
		vectors[i] = window[i : i+m]
	}

	return vectors
}

// chebyshev is the largest absolute coordinate difference between two vectors of equal length.
func chebyshev(a, b []float64) float64 {
	var d float64
	for k := range a {
		if diff := math.Abs(a[k] - b[k]); diff > d {
			d = diff
		}
	}

	return d
}

// correlationIntegrals returns C[i], the fraction of vectors within r of
// vector i. The comparison of i with itself is counted, so C[i] >= 1/len.
func correlationIntegrals(vectors [][]float64, r float64) []float64 {
	n := len(vectors)
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		count := 0
		for j := 0; j < n; j++ {
			if chebyshev(vectors[i], vectors[j]) <= r {
				count++
			}
		}
		c[i] = float64(count) / float64(n)
	}

	return c
}

func phi(c []float64) float64 {
	if len(c) == 0 {
		return 0
	}

	var sum float64
	for _, v := range c {
		sum += math.Log(v)
	}

	return sum / float64(len(c))
}
