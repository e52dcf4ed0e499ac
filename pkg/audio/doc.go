// Package audio groups the audio sub-packages used to turn speech clips
// into classifier input:
//
//   - wav: WAVE decoding and encoding to interleaved float32 samples
//   - resampler: sample rate conversion
//   - spectral: STFT, mel, MFCC and chroma representations
//   - features: the fixed-length feature vector built from them
//   - tone: deterministic test signals
//
// Example usage:
//
//	import (
//	    "github.com/rahul24/CritiqueForTeams/pkg/audio/features"
//	    "github.com/rahul24/CritiqueForTeams/pkg/audio/wav"
//	)
//
//	clip, err := wav.Open("call.wav")
//	ext, err := features.New(features.DefaultConfig())
//	vec, err := ext.Extract(clip, features.AllFlags())
package audio
