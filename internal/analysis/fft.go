package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// padFactor zero-pads the series before the transform to refine the
// frequency grid.
const padFactor = 4

// PowerSpectrum returns the magnitude of the first half of the discrete
// Fourier transform of data after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	spectrum := fft.FFTReal(centered(data, len(data)))
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in a
// series sampled every dt seconds. The peak bin is refined by parabolic
// interpolation over its neighbours.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: %d samples", ErrShortSeries, len(data))
	}
	if !(dt > 0) {
		return 0, fmt.Errorf("analysis: sample spacing must be positive, got %v", dt)
	}

	n := nextPow2(len(data)) * padFactor
	spectrum := fft.FFTReal(centered(data, n))

	mags := make([]float64, n/2)
	for i := range mags {
		mags[i] = cmplx.Abs(spectrum[i])
	}
	mags[0] = 0

	k := floats.MaxIdx(mags)
	if mags[k] == 0 {
		return 0, fmt.Errorf("analysis: series has no oscillation")
	}

	peak := float64(k)
	if k > 0 && k < len(mags)-1 {
		a, b, c := mags[k-1], mags[k], mags[k+1]
		if denom := a - 2*b + c; denom != 0 {
			peak += 0.5 * (a - c) / denom
		}
	}

	return float64(n) * dt / peak, nil
}

// centered copies data minus its mean into a zero-filled slice of length n.
func centered(data []float64, n int) []float64 {
	mean := floats.Sum(data) / float64(len(data))
	out := make([]float64, n)
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

func nextPow2(n int) int {
	return 1 << uint(math.Ceil(math.Log2(float64(n))))
}
