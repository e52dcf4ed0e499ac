package spectral

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// tiny is the smallest positive normal float64; norms below it are left
// unscaled.
const tiny = 2.2250738585072014e-308

// Chroma filter bank shape parameters.
const (
	chromaCenterOctave = 5.0
	chromaOctaveWidth  = 2.0
)

// Pitch tracking window used for tuning estimation.
const (
	tuningFMin       = 150.0
	tuningFMax       = 4000.0
	tuningThreshold  = 0.1
	tuningResolution = 0.01
)

// HzToOcts converts a frequency to octave numbers, where octave 4 starts
// at A440 shifted by tuning (in fractions of a bin).
func HzToOcts(hz, tuning float64, binsPerOctave int) float64 {
	a440 := 440.0 * math.Pow(2.0, tuning/float64(binsPerOctave))
	return math.Log2(hz / (a440 / 16))
}

// Piptrack finds spectral peaks between fmin and fmax and refines each
// with parabolic interpolation. A bin is a peak when it exceeds
// threshold*max of its frame and is a local maximum along frequency.
// Both results have the shape of mag; non-peak cells are zero.
func Piptrack(mag *mat.Dense, sr int, fmin, fmax, threshold float64) (pitches, mags *mat.Dense) {
	bins, frames := mag.Dims()
	nfft := 2 * (bins - 1)
	fmin = math.Max(fmin, 0)
	fmax = math.Min(fmax, float64(sr)/2)
	freqs := FFTFrequencies(sr, nfft)

	pitches = mat.NewDense(bins, frames, nil)
	mags = mat.NewDense(bins, frames, nil)
	if bins < 3 {
		return pitches, mags
	}

	col := make([]float64, bins)
	gated := make([]float64, bins)
	for t := range frames {
		mat.Col(col, t, mag)
		ref := threshold * floats.Max(col)
		for f, v := range col {
			if v > ref {
				gated[f] = v
			} else {
				gated[f] = 0
			}
		}

		for f := 1; f < bins-1; f++ {
			if freqs[f] < fmin || freqs[f] >= fmax {
				continue
			}
			if !(gated[f] > gated[f-1] && gated[f] >= gated[f+1]) {
				continue
			}
			avg := 0.5 * (col[f+1] - col[f-1])
			curv := 2*col[f] - col[f+1] - col[f-1]
			if math.Abs(curv) < tiny {
				curv++
			}
			shift := avg / curv
			pitches.Set(f, t, (float64(f)+shift)*float64(sr)/float64(nfft))
			mags.Set(f, t, col[f]+0.5*avg*shift)
		}
	}
	return pitches, mags
}

// PitchTuning estimates the tuning offset, in fractions of a bin, of a set
// of frequencies: the most common deviation from the equal-tempered grid
// at the given resolution.
func PitchTuning(freqs []float64, resolution float64, binsPerOctave int) float64 {
	var residual []float64
	for _, f := range freqs {
		if f <= 0 {
			continue
		}
		r := math.Mod(float64(binsPerOctave)*HzToOcts(f, 0, binsPerOctave), 1.0)
		if r < 0 {
			r++
		}
		if r >= 0.5 {
			r--
		}
		residual = append(residual, r)
	}
	if len(residual) == 0 {
		return 0
	}

	nbins := int(math.Ceil(1.0 / resolution))
	edges := linspace(-0.5, 0.5, nbins+1)
	counts := make([]int, nbins)
	for _, r := range residual {
		if i, ok := histogramBin(r, edges); ok {
			counts[i]++
		}
	}
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return edges[best]
}

// histogramBin locates v in half-open bins [edges[i], edges[i+1]); the
// last bin is closed.
func histogramBin(v float64, edges []float64) (int, bool) {
	n := len(edges) - 1
	lo, hi := edges[0], edges[n]
	if v < lo || v > hi {
		return 0, false
	}
	i := int((v - lo) / (hi - lo) * float64(n))
	if i >= n {
		i = n - 1
	}
	if v < edges[i] {
		i--
	} else if i != n-1 && v >= edges[i+1] {
		i++
	}
	return i, true
}

// EstimateTuning estimates the tuning of a magnitude spectrogram from the
// pitches of its stronger spectral peaks.
func EstimateTuning(mag *mat.Dense, sr, binsPerOctave int) float64 {
	pitches, mags := Piptrack(mag, sr, tuningFMin, tuningFMax, tuningThreshold)

	var voiced []float64
	r, c := pitches.Dims()
	for i := range r {
		for j := range c {
			if pitches.At(i, j) > 0 {
				voiced = append(voiced, mags.At(i, j))
			}
		}
	}
	threshold := 0.0
	if len(voiced) > 0 {
		threshold = median(voiced)
	}

	var freqs []float64
	for i := range r {
		for j := range c {
			if p := pitches.At(i, j); p > 0 && mags.At(i, j) >= threshold {
				freqs = append(freqs, p)
			}
		}
	}
	return PitchTuning(freqs, tuningResolution, binsPerOctave)
}

func median(v []float64) float64 {
	s := slices.Clone(v)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return 0.5 * (s[n/2-1] + s[n/2])
}

// ChromaFilterBank returns the [nChroma, 1+nfft/2] matrix mapping rfft
// bins to pitch classes. Row 0 is C. Each bin spreads a Gaussian bump over
// the pitch classes, is L2-normalized across them, and is weighted by a
// Gaussian over octaves centered on octave 5.
func ChromaFilterBank(sr, nfft, nChroma int, tuning float64) *mat.Dense {
	nc := float64(nChroma)

	// Bin 0 (DC) has no pitch; it is placed 1.5 octaves below bin 1.
	frqbins := make([]float64, nfft)
	for k := 1; k < nfft; k++ {
		hz := float64(k) * float64(sr) / float64(nfft)
		frqbins[k] = nc * HzToOcts(hz, tuning, nChroma)
	}
	frqbins[0] = frqbins[1] - 1.5*nc

	widths := make([]float64, nfft)
	for k := 0; k < nfft-1; k++ {
		widths[k] = math.Max(frqbins[k+1]-frqbins[k], 1.0)
	}
	widths[nfft-1] = 1

	half := math.Round(nc / 2)
	wts := mat.NewDense(nChroma, nfft, nil)
	for c := range nChroma {
		for k := range nfft {
			d := math.Mod(frqbins[k]-float64(c)+half+10*nc, nc)
			if d < 0 {
				d += nc
			}
			d -= half
			x := 2 * d / widths[k]
			wts.Set(c, k, math.Exp(-0.5*x*x))
		}
	}

	col := make([]float64, nChroma)
	for k := range nfft {
		mat.Col(col, k, wts)
		norm := floats.Norm(col, 2)
		if norm < tiny {
			norm = 1
		}
		octave := (frqbins[k]/nc - chromaCenterOctave) / chromaOctaveWidth
		scale := math.Exp(-0.5*octave*octave) / norm
		for c := range nChroma {
			wts.Set(c, k, wts.At(c, k)*scale)
		}
	}

	// Rotate so that row 0 is C rather than A.
	shift := 3 * (nChroma / 12)
	bins := nfft/2 + 1
	bank := mat.NewDense(nChroma, bins, nil)
	for c := range nChroma {
		src := (c + shift) % nChroma
		for k := range bins {
			bank.Set(c, k, wts.At(src, k))
		}
	}
	return bank
}

// Chroma computes a chromagram from a magnitude spectrogram. The tuning is
// estimated from the spectrogram itself and every frame is scaled so its
// largest pitch class is 1.
func Chroma(mag *mat.Dense, sr, nChroma int) *mat.Dense {
	bins, _ := mag.Dims()
	nfft := 2 * (bins - 1)
	tuning := EstimateTuning(mag, sr, nChroma)

	var raw mat.Dense
	raw.Mul(ChromaFilterBank(sr, nfft, nChroma, tuning), mag)

	r, c := raw.Dims()
	col := make([]float64, r)
	for j := range c {
		mat.Col(col, j, &raw)
		norm := floats.Norm(col, math.Inf(1))
		if norm < tiny {
			continue
		}
		for i := range r {
			raw.Set(i, j, col[i]/norm)
		}
	}
	return &raw
}
