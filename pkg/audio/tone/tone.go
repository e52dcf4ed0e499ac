// Package tone generates deterministic test signals: pure tones and
// rising-pitch sweeps.
package tone

import (
	"math"

	"github.com/rahul24/CritiqueForTeams/pkg/audio/wav"
)

// Note frequencies (Hz).
const (
	A3 = 220.0
	C4 = 261.63
	A4 = 440.0
	C5 = 523.25
	A5 = 880.0
)

// Sine returns n samples of a sine wave at freq Hz.
func Sine(freq, amp float64, n, sampleRate int) []float32 {
	out := make([]float32, n)
	for i := range n {
		t := float64(i) / float64(sampleRate)
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

// Chirp returns n samples of a linear frequency sweep from f0 to f1 Hz.
func Chirp(f0, f1, amp float64, n, sampleRate int) []float32 {
	out := make([]float32, n)
	dur := float64(n) / float64(sampleRate)
	k := (f1 - f0) / dur
	for i := range n {
		t := float64(i) / float64(sampleRate)
		phase := 2 * math.Pi * (f0*t + 0.5*k*t*t)
		out[i] = float32(amp * math.Sin(phase))
	}
	return out
}

// Rising returns a mono clip of a sweep from A3 to A5 lasting ms
// milliseconds at half amplitude.
func Rising(sampleRate, ms int) *wav.Clip {
	n := sampleRate * ms / 1000
	return &wav.Clip{
		SampleRate: sampleRate,
		Channels:   1,
		Samples:    Chirp(A3, A5, 0.5, n, sampleRate),
	}
}

// Duplicate interleaves mono samples into a clip with identical channels.
func Duplicate(mono []float32, channels, sampleRate int) *wav.Clip {
	out := make([]float32, len(mono)*channels)
	for i, s := range mono {
		for c := range channels {
			out[i*channels+c] = s
		}
	}
	return &wav.Clip{SampleRate: sampleRate, Channels: channels, Samples: out}
}
