// Package spectral computes the time-frequency representations used for
// speech emotion features: magnitude STFT, mel spectrogram, MFCC and
// chroma.
//
// All 2-D results are [*mat.Dense] values laid out with one row per
// frequency (or feature) bin and one column per frame. [TimeMean]
// collapses them to a single vector.
//
// Defaults follow the conventions the emotion classifier was trained
// with:
//
//	NFFT:       2048
//	HopLength:   512
//	Window:     periodic Hann, centered frames, reflect padding
//	NMels:       128 (Slaney mel scale, Slaney area normalization)
//	NMFCC:        40 (orthonormal DCT-II of the dB mel spectrogram)
//	TopDB:        80
//	NChroma:      12 (tuning estimated from the spectrum)
package spectral
