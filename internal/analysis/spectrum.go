// Package analysis finds oscillations in recorded vehicle motion.
package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooShort = errors.New("analysis: need at least two samples")

// pad removes the mean and zero-pads to the next power of two.
func pad(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n <<= 1
	}
	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	out := make([]float64, n)
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// PowerSpectrum returns amplitude per frequency bin and the bin width in Hz
// for a series sampled every dt seconds.
func PowerSpectrum(data []float64, dt float64) ([]float64, float64) {
	if len(data) < 2 || !(dt > 0) {
		return nil, 0
	}
	p := pad(data)
	x := fft.FFTReal(p)
	ps := make([]float64, len(x)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(x[i]) * 2 / float64(len(data))
	}
	return ps, 1 / (float64(len(p)) * dt)
}

// Peak is the strongest non-DC component of a series.
type Peak struct {
	Frequency float64 // Hz
	Amplitude float64
}

func (p Peak) Period() float64 {
	if p.Frequency == 0 {
		return math.Inf(1)
	}
	return 1 / p.Frequency
}

func DominantFrequency(data []float64, dt float64) (Peak, error) {
	ps, df := PowerSpectrum(data, dt)
	if len(ps) < 2 {
		return Peak{}, ErrTooShort
	}
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return Peak{Frequency: float64(best) * df, Amplitude: ps[best]}, nil
}
