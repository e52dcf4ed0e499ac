// Package features turns an audio clip into the fixed-length vector the
// emotion classifier consumes.
//
// Three sub-vectors are supported, each the time-axis mean of a 2-D
// spectral representation, and appended in a fixed order:
//
//	MFCC    NMFCC values   (default 40)
//	Chroma  NChroma values (default 12)
//	Mel     NMels values   (default 128)
//
// The vector length depends only on which [Flags] are set, so a vector
// produced with the flags and [Config] a classifier was trained with always
// matches its input layer. Changing either invalidates the classifier.
package features

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/rahul24/CritiqueForTeams/pkg/audio/resampler"
	"github.com/rahul24/CritiqueForTeams/pkg/audio/spectral"
	"github.com/rahul24/CritiqueForTeams/pkg/audio/wav"
)

var (
	// ErrNoAudio is returned when a clip has no samples.
	ErrNoAudio = errors.New("features: no audio samples")

	// ErrInvalidClip is returned for clips whose format cannot be analyzed,
	// such as a non-positive sample rate.
	ErrInvalidClip = errors.New("features: invalid clip")
)

// Kind identifies a sub-vector.
type Kind string

const (
	KindMFCC   Kind = "mfcc"
	KindChroma Kind = "chroma"
	KindMel    Kind = "mel"
)

// Flags selects which sub-vectors are computed.
type Flags struct {
	MFCC   bool `yaml:"mfcc" json:"mfcc" msgpack:"mfcc"`
	Chroma bool `yaml:"chroma" json:"chroma" msgpack:"chroma"`
	Mel    bool `yaml:"mel" json:"mel" msgpack:"mel"`
}

// AllFlags enables every sub-vector.
func AllFlags() Flags {
	return Flags{MFCC: true, Chroma: true, Mel: true}
}

func (f Flags) String() string {
	var kinds []string
	if f.MFCC {
		kinds = append(kinds, string(KindMFCC))
	}
	if f.Chroma {
		kinds = append(kinds, string(KindChroma))
	}
	if f.Mel {
		kinds = append(kinds, string(KindMel))
	}
	if len(kinds) == 0 {
		return "none"
	}
	return strings.Join(kinds, "+")
}

// Config controls the spectral analysis.
type Config struct {
	SampleRate int     `yaml:"sample_rate,omitempty" json:"sample_rate,omitempty"` // resample target in Hz; 0 keeps the native rate
	NFFT       int     `yaml:"n_fft,omitempty" json:"n_fft,omitempty"`             // FFT size (default 2048)
	HopLength  int     `yaml:"hop_length,omitempty" json:"hop_length,omitempty"`   // frame hop in samples (default 512)
	NMFCC      int     `yaml:"n_mfcc,omitempty" json:"n_mfcc,omitempty"`           // cepstral coefficients (default 40)
	NMels      int     `yaml:"n_mels,omitempty" json:"n_mels,omitempty"`           // mel bands (default 128)
	NChroma    int     `yaml:"n_chroma,omitempty" json:"n_chroma,omitempty"`       // pitch classes (default 12)
	FMin       float64 `yaml:"fmin,omitempty" json:"fmin,omitempty"`               // lowest mel frequency (default 0)
	FMax       float64 `yaml:"fmax,omitempty" json:"fmax,omitempty"`               // highest mel frequency (default sr/2)
	TopDB      float64 `yaml:"top_db,omitempty" json:"top_db,omitempty"`           // dB floor below peak for MFCC (default 80)
	HTK        bool    `yaml:"htk,omitempty" json:"htk,omitempty"`                 // HTK mel scale instead of Slaney
}

// DefaultConfig returns the analysis settings the bundled classifier was
// trained with.
func DefaultConfig() Config {
	return Config{
		NFFT:      2048,
		HopLength: 512,
		NMFCC:     40,
		NMels:     128,
		NChroma:   12,
		TopDB:     spectral.DefaultTopDB,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NFFT == 0 {
		c.NFFT = d.NFFT
	}
	if c.HopLength == 0 {
		c.HopLength = d.HopLength
	}
	if c.NMFCC == 0 {
		c.NMFCC = d.NMFCC
	}
	if c.NMels == 0 {
		c.NMels = d.NMels
	}
	if c.NChroma == 0 {
		c.NChroma = d.NChroma
	}
	if c.TopDB == 0 {
		c.TopDB = d.TopDB
	}
	return c
}

// Validate reports configuration values the analysis cannot run with.
func (c Config) Validate() error {
	c = c.withDefaults()
	switch {
	case c.SampleRate < 0:
		return fmt.Errorf("features: negative sample rate %d", c.SampleRate)
	case c.NFFT < 4 || c.NFFT%2 != 0:
		return fmt.Errorf("features: n_fft must be even and >= 4, got %d", c.NFFT)
	case c.HopLength < 0:
		return fmt.Errorf("features: negative hop length %d", c.HopLength)
	case c.NMFCC < 0 || c.NMels < 0 || c.NChroma < 0:
		return fmt.Errorf("features: negative band count")
	case c.NMFCC > c.NMels:
		return fmt.Errorf("features: n_mfcc (%d) exceeds n_mels (%d)", c.NMFCC, c.NMels)
	case c.FMin < 0 || (c.FMax != 0 && c.FMax <= c.FMin):
		return fmt.Errorf("features: invalid mel range [%g, %g]", c.FMin, c.FMax)
	}
	return nil
}

// Segment locates one sub-vector inside a [Vector].
type Segment struct {
	Kind   Kind `yaml:"kind" json:"kind"`
	Offset int  `yaml:"offset" json:"offset"`
	Len    int  `yaml:"len" json:"len"`
}

// Vector is an extracted feature vector with its layout.
type Vector struct {
	Values   []float64 `yaml:"values" json:"values"`
	Segments []Segment `yaml:"segments" json:"segments"`
}

// Len returns the number of values.
func (v Vector) Len() int {
	return len(v.Values)
}

// Segment returns the values of the given kind, or nil if absent.
func (v Vector) Segment(k Kind) []float64 {
	for _, s := range v.Segments {
		if s.Kind == k {
			return v.Values[s.Offset : s.Offset+s.Len]
		}
	}
	return nil
}

// Extractor computes feature vectors. It is immutable and safe for
// concurrent use.
type Extractor struct {
	cfg Config
}

// New creates an Extractor. Zero fields in cfg take their defaults.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg.withDefaults()}, nil
}

// Config returns the effective configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Len returns the vector length produced for flags.
func (e *Extractor) Len(flags Flags) int {
	n := 0
	for _, s := range e.layout(flags) {
		n += s.Len
	}
	return n
}

func (e *Extractor) layout(flags Flags) []Segment {
	var segs []Segment
	off := 0
	add := func(on bool, k Kind, n int) {
		if !on {
			return
		}
		segs = append(segs, Segment{Kind: k, Offset: off, Len: n})
		off += n
	}
	add(flags.MFCC, KindMFCC, e.cfg.NMFCC)
	add(flags.Chroma, KindChroma, e.cfg.NChroma)
	add(flags.Mel, KindMel, e.cfg.NMels)
	return segs
}

// ExtractFile decodes the WAVE file at path and extracts its features.
func (e *Extractor) ExtractFile(path string, flags Flags) (Vector, error) {
	clip, err := wav.Open(path)
	if err != nil {
		return Vector{}, err
	}
	return e.Extract(clip, flags)
}

// Extract computes the feature vector of clip. Multi-channel clips are
// mixed down to mono first.
func (e *Extractor) Extract(clip *wav.Clip, flags Flags) (Vector, error) {
	if clip == nil || clip.Frames() == 0 {
		return Vector{}, ErrNoAudio
	}
	if clip.SampleRate <= 0 {
		return Vector{}, fmt.Errorf("%w: sample rate %d", ErrInvalidClip, clip.SampleRate)
	}

	y := clip.Mono()
	sr := clip.SampleRate
	if e.cfg.SampleRate > 0 && e.cfg.SampleRate != sr {
		var err error
		y, err = resampler.Resample(y, sr, e.cfg.SampleRate)
		if err != nil {
			return Vector{}, fmt.Errorf("features: %w", err)
		}
		sr = e.cfg.SampleRate
		if len(y) == 0 {
			return Vector{}, ErrNoAudio
		}
	}
	return e.ExtractSamples(y, sr, flags)
}

// ExtractSamples computes the feature vector of mono samples at sample
// rate sr.
func (e *Extractor) ExtractSamples(y []float32, sr int, flags Flags) (Vector, error) {
	if len(y) == 0 {
		return Vector{}, ErrNoAudio
	}
	if sr <= 0 {
		return Vector{}, fmt.Errorf("%w: sample rate %d", ErrInvalidClip, sr)
	}

	vec := Vector{
		Values:   make([]float64, 0, e.Len(flags)),
		Segments: e.layout(flags),
	}
	if len(vec.Segments) == 0 {
		return vec, nil
	}

	mag, err := spectral.STFT(y, e.cfg.NFFT, e.cfg.HopLength)
	if err != nil {
		return Vector{}, fmt.Errorf("features: %w", err)
	}

	var melPower *mat.Dense
	if flags.MFCC || flags.Mel {
		bank := spectral.MelFilterBank(sr, e.cfg.NFFT, e.cfg.NMels, e.cfg.FMin, e.cfg.FMax, e.cfg.HTK)
		melPower = spectral.MelSpectrogram(spectral.Power(mag), bank)
	}

	for _, seg := range vec.Segments {
		var m *mat.Dense
		switch seg.Kind {
		case KindMFCC:
			m = spectral.MFCC(melPower, e.cfg.NMFCC, e.cfg.TopDB)
		case KindChroma:
			m = spectral.Chroma(mag, sr, e.cfg.NChroma)
		case KindMel:
			m = melPower
		}
		vec.Values = append(vec.Values, spectral.TimeMean(m)...)
	}
	return vec, nil
}
