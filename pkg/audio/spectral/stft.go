package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrEmpty is returned when a transform is given no samples.
var ErrEmpty = errors.New("spectral: empty signal")

// HannWindow returns a periodic Hann window of length n, the DFT-even
// variant used for spectral analysis.
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// NumFrames returns the number of centered STFT frames for n samples.
func NumFrames(n, hop int) int {
	return 1 + n/hop
}

// STFT returns the magnitude short-time Fourier transform of y as a
// [1+nfft/2, frames] matrix. Frames are centered: the signal is
// reflect-padded by nfft/2 on both sides.
func STFT(y []float32, nfft, hop int) (*mat.Dense, error) {
	if nfft <= 0 || hop <= 0 {
		return nil, fmt.Errorf("spectral: invalid stft params nfft=%d hop=%d", nfft, hop)
	}
	if len(y) == 0 {
		return nil, ErrEmpty
	}

	n := len(y)
	pad := nfft / 2
	frames := NumFrames(n, hop)
	bins := nfft/2 + 1

	window := HannWindow(nfft)
	fft := fourier.NewFFT(nfft)

	out := mat.NewDense(bins, frames, nil)
	buf := make([]float64, nfft)
	coeffs := make([]complex128, bins)
	for t := range frames {
		start := t*hop - pad
		for k := range nfft {
			buf[k] = float64(y[reflect(start+k, n)]) * window[k]
		}
		coeffs = fft.Coefficients(coeffs, buf)
		for f, c := range coeffs {
			out.Set(f, t, cmplx.Abs(c))
		}
	}
	return out, nil
}

// reflect maps an out-of-range index back into [0, n) by mirroring
// around the edges without repeating the edge sample.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// Power returns the element-wise square of a magnitude spectrogram.
func Power(mag *mat.Dense) *mat.Dense {
	var p mat.Dense
	p.MulElem(mag, mag)
	return &p
}

// FFTFrequencies returns the center frequency of each rfft bin.
func FFTFrequencies(sr, nfft int) []float64 {
	return linspace(0, float64(sr)/2, nfft/2+1)
}

// linspace returns n evenly spaced values over [start, stop].
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = float64(i)*step + start
	}
	out[n-1] = stop
	return out
}

// TimeMean returns the mean of every row of M across its columns (frames).
func TimeMean(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, r)
	for i := range r {
		out[i] = floats.Sum(m.RawRowView(i)) / float64(c)
	}
	return out
}
