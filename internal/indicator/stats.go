package indicator

import (
	"math"

	"github.com/montanaflynn/stats"

	"main/pkg/exception"
)

// MeanStdDev returns the mean and sample standard deviation of the
// retained samples. At least two samples are required.
func MeanStdDev(w *Window[float64]) (mean, stddev float64, err error) {
	if w.Len() < 2 {
		return 0, 0, exception.ErrInsufficientSamples
	}

	data := stats.Float64Data(w.Values())
	mean, err = stats.Mean(data)
	if err != nil {
		return 0, 0, err
	}
	stddev, err = stats.StandardDeviationSample(data)
	if err != nil {
		return 0, 0, err
	}
	return mean, stddev, nil
}

// CombinedStdDev folds two per-leg deviations into one spread deviation
// assuming the legs move together. Degenerates to |a-b|; kept in the
// expanded form so the correlation term stays visible.
func CombinedStdDev(a, b float64) float64 {
	v := a*a + b*b - 2*a*b
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// Extrema returns the minimum and maximum over the last lookback
// samples. ErrInsufficientSamples when fewer are retained.
func Extrema[T Number](w *Window[T], lookback int) (min, max T, err error) {
	n := w.Len()
	if lookback < 1 || n < lookback {
		var zero T
		return zero, zero, exception.ErrInsufficientSamples
	}

	min = w.At(n - lookback)
	max = min
	for i := n - lookback + 1; i < n; i++ {
		v := w.At(i)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, nil
}
