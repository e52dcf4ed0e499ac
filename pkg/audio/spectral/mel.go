package spectral

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Slaney mel scale constants: linear below 1 kHz, logarithmic above.
const (
	slaneyFSp      = 200.0 / 3
	slaneyMinLogHz = 1000.0
	slaneyMinLog   = slaneyMinLogHz / slaneyFSp // 15 mels
)

var slaneyLogStep = math.Log(6.4) / 27.0

// HzToMel converts a frequency in Hz to mels. With htk the HTK formula
// 2595*log10(1+f/700) is used, otherwise the Slaney scale.
func HzToMel(hz float64, htk bool) float64 {
	if htk {
		return 2595.0 * math.Log10(1.0+hz/700.0)
	}
	if hz >= slaneyMinLogHz {
		return slaneyMinLog + math.Log(hz/slaneyMinLogHz)/slaneyLogStep
	}
	return hz / slaneyFSp
}

// MelToHz is the inverse of [HzToMel].
func MelToHz(mel float64, htk bool) float64 {
	if htk {
		return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
	}
	if mel >= slaneyMinLog {
		return slaneyMinLogHz * math.Exp(slaneyLogStep*(mel-slaneyMinLog))
	}
	return slaneyFSp * mel
}

// MelFrequencies returns n frequencies in Hz evenly spaced on the mel
// scale between fmin and fmax.
func MelFrequencies(n int, fmin, fmax float64, htk bool) []float64 {
	mels := linspace(HzToMel(fmin, htk), HzToMel(fmax, htk), n)
	for i, m := range mels {
		mels[i] = MelToHz(m, htk)
	}
	return mels
}

// MelFilterBank returns the [nMels, 1+nfft/2] triangular mel filter
// matrix. Each filter is scaled by 2/(f[i+2]-f[i]) so filters have
// approximately constant energy per channel. fmax <= 0 means sr/2.
func MelFilterBank(sr, nfft, nMels int, fmin, fmax float64, htk bool) *mat.Dense {
	if fmax <= 0 {
		fmax = float64(sr) / 2
	}
	fftFreqs := FFTFrequencies(sr, nfft)
	melF := MelFrequencies(nMels+2, fmin, fmax, htk)

	bank := mat.NewDense(nMels, len(fftFreqs), nil)
	for i := range nMels {
		lowerWidth := melF[i+1] - melF[i]
		upperWidth := melF[i+2] - melF[i+1]
		enorm := 2.0 / (melF[i+2] - melF[i])
		for k, f := range fftFreqs {
			lower := (f - melF[i]) / lowerWidth
			upper := (melF[i+2] - f) / upperWidth
			w := math.Max(0, math.Min(lower, upper))
			bank.Set(i, k, w*enorm)
		}
	}
	return bank
}

// MelSpectrogram projects a power spectrogram onto a mel filter bank.
func MelSpectrogram(power, bank *mat.Dense) *mat.Dense {
	var m mat.Dense
	m.Mul(bank, power)
	return &m
}
