// Package critique labels short speech clips as non-negative or negative.
//
// An [Analyzer] owns the whole chain and is built once at program start:
//
//	path → wav decode → features.Extractor → emotion.Adapter → label
//
// Construction fails fast when the feature layout and the classifier
// disagree, so a running Analyzer can only fail on bad audio.
package critique

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rahul24/CritiqueForTeams/pkg/audio/features"
	"github.com/rahul24/CritiqueForTeams/pkg/audio/wav"
	"github.com/rahul24/CritiqueForTeams/pkg/emotion"
	"github.com/rahul24/CritiqueForTeams/pkg/mlp"
	"github.com/rahul24/CritiqueForTeams/pkg/storage"
)

// Options configures an Analyzer.
type Options struct {
	// Features controls the spectral analysis. Zero fields take their
	// defaults.
	Features features.Config

	// Flags selects the sub-vectors fed to the classifier.
	Flags features.Flags

	// Classifier is required.
	Classifier emotion.Classifier

	// Labels maps class codes. If nil, uses emotion.DefaultTable().
	Labels emotion.Table

	// Logger is optional. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns options for the bundled classifier layout with
// every sub-vector enabled. Classifier must still be set.
func DefaultOptions() Options {
	return Options{
		Features: features.DefaultConfig(),
		Flags:    features.AllFlags(),
		Labels:   emotion.DefaultTable(),
	}
}

// Result is the outcome of analyzing one clip.
type Result struct {
	Path  string        `json:"path,omitempty" yaml:"path,omitempty"`
	Label emotion.Label `json:"label" yaml:"label"`
	Code  int           `json:"code" yaml:"code"`

	// Scores holds the classifier's score per label when it exposes
	// per-class scores.
	Scores map[string]float64 `json:"scores,omitempty" yaml:"scores,omitempty"`

	// Emotion and Expected are set when the file name follows the RAVDESS
	// MM-VC-EE-II-SS-RR-AA convention: the recorded emotion and the label
	// it compresses to.
	Emotion  string         `json:"emotion,omitempty" yaml:"emotion,omitempty"`
	Expected *emotion.Label `json:"expected,omitempty" yaml:"expected,omitempty"`

	Features features.Vector `json:"-" yaml:"-"`
}

// Matches reports whether the predicted label equals the expected one. It
// is false when no expectation is known.
func (r *Result) Matches() bool {
	return r.Expected != nil && *r.Expected == r.Label
}

// featureFlagger is implemented by classifiers that record the features
// they were trained on.
type featureFlagger interface {
	FeatureFlags() (features.Flags, bool)
}

// scorer is implemented by classifiers that expose per-class scores
// ordered like their classes.
type scorer interface {
	emotion.ClassSet
	PredictProba(batch [][]float64) ([][]float64, error)
}

// Analyzer runs the pipeline. It holds no mutable state.
type Analyzer struct {
	extractor *features.Extractor
	adapter   *emotion.Adapter
	scorer    scorer
	flags     features.Flags
	logger    *slog.Logger
}

// New builds an Analyzer and checks that the extractor's vector length
// equals the classifier's input dimension and that the label table covers
// the classifier's classes.
func New(opts Options) (*Analyzer, error) {
	if opts.Classifier == nil {
		return nil, errors.New("critique: classifier is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ext, err := features.New(opts.Features)
	if err != nil {
		return nil, fmt.Errorf("critique: %w", err)
	}
	if got, want := ext.Len(opts.Flags), opts.Classifier.InputDim(); got != want {
		return nil, &emotion.ShapeError{Want: want, Got: got}
	}
	if ff, ok := opts.Classifier.(featureFlagger); ok {
		if trained, ok := ff.FeatureFlags(); ok && trained != opts.Flags {
			logger.Warn("critique: feature flags differ from the classifier's training flags",
				"flags", opts.Flags.String(), "trained", trained.String())
		}
	}

	adapter, err := emotion.NewAdapter(opts.Classifier, opts.Labels, emotion.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	sc, _ := opts.Classifier.(scorer)
	return &Analyzer{
		extractor: ext,
		adapter:   adapter,
		scorer:    sc,
		flags:     opts.Flags,
		logger:    logger,
	}, nil
}

// Load reads a classifier artifact from a local path or s3:// URI and
// builds an Analyzer around it. opts.Classifier is replaced.
func Load(ctx context.Context, location string, newS3 func(bucket string) (storage.S3Client, error), opts Options) (*Analyzer, error) {
	model, err := mlp.LoadLocation(ctx, location, newS3)
	if err != nil {
		return nil, err
	}
	opts.Classifier = model
	return New(opts)
}

// Extractor returns the analyzer's feature extractor.
func (a *Analyzer) Extractor() *features.Extractor {
	return a.extractor
}

// Flags returns the feature selection.
func (a *Analyzer) Flags() features.Flags {
	return a.flags
}

// Analyze labels the WAVE file at path.
func (a *Analyzer) Analyze(path string) (*Result, error) {
	clip, err := wav.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	res, err := a.AnalyzeClip(clip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Path = path
	a.expect(res)
	a.logger.Debug("critique: analyzed", "path", path, "label", res.Label.String(), "code", res.Code)
	return res, nil
}

// AnalyzeClip labels decoded audio.
func (a *Analyzer) AnalyzeClip(clip *wav.Clip) (*Result, error) {
	vec, err := a.extractor.Extract(clip, a.flags)
	if err != nil {
		if errors.Is(err, features.ErrNoAudio) || errors.Is(err, features.ErrInvalidClip) {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return nil, fmt.Errorf("critique: %w", err)
	}
	p, err := a.adapter.Classify(vec.Values)
	if err != nil {
		return nil, err
	}
	res := &Result{Label: p.Label, Code: p.Code, Features: vec}
	if a.scorer != nil {
		if res.Scores, err = a.scores(vec.Values); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// scores returns the classifier's scores keyed by label name. Codes that
// share a label have their scores summed.
func (a *Analyzer) scores(vec []float64) (map[string]float64, error) {
	probs, err := a.scorer.PredictProba([][]float64{vec})
	if err != nil {
		return nil, fmt.Errorf("critique: scores: %w", err)
	}
	classes := a.scorer.Classes()
	if len(probs) == 0 || len(probs[0]) != len(classes) {
		return nil, errors.New("critique: scores do not match the classifier's classes")
	}
	out := make(map[string]float64, len(classes))
	for i, code := range classes {
		l, err := a.adapter.Table().Lookup(code)
		if err != nil {
			return nil, err
		}
		out[l.String()] += probs[0][i]
	}
	return out, nil
}

// expect fills in the recorded emotion of RAVDESS-named clips. Other
// names are left alone.
func (a *Analyzer) expect(res *Result) {
	code, err := emotion.ParseClipName(res.Path)
	if err != nil {
		return
	}
	class, err := emotion.Compress(code)
	if err != nil {
		return
	}
	l, err := a.adapter.Table().Lookup(class)
	if err != nil {
		return
	}
	res.Emotion = emotion.Names[code]
	res.Expected = &l
}
