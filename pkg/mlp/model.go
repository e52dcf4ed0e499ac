package mlp

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/rahul24/CritiqueForTeams/pkg/audio/features"
	"github.com/rahul24/CritiqueForTeams/pkg/emotion"
	"github.com/rahul24/CritiqueForTeams/pkg/storage"
)

// ErrModelLoad wraps every failure to obtain a usable model.
var ErrModelLoad = errors.New("mlp: model load failed")

// MaxArtifactSize bounds the bytes read by [Load].
const MaxArtifactSize = 256 << 20

// Model is a loaded network. It is immutable and safe for concurrent use.
type Model struct {
	art     *Artifact
	weights []*mat.Dense
	hidden  Activation
	output  Activation
}

// New validates a and prepares it for inference.
func New(a *Artifact) (*Model, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil artifact", ErrInvalid)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	m := &Model{art: a, hidden: a.hidden(), output: a.output()}
	for _, l := range a.Layers {
		w := mat.NewDense(l.In(), l.Out(), nil)
		for r, row := range l.Weights {
			w.SetRow(r, row)
		}
		m.weights = append(m.weights, w)
	}
	return m, nil
}

// LoadArtifact reads and decodes the artifact at name in fs. The format
// follows the file extension.
func LoadArtifact(ctx context.Context, fs storage.FileStore, name string) (*Artifact, error) {
	data, err := storage.ReadFile(ctx, fs, name, MaxArtifactSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelLoad, name, err)
	}
	a, err := Decode(data, FormatFor(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelLoad, name, err)
	}
	return a, nil
}

// Load reads, decodes and validates the artifact at name in fs.
func Load(ctx context.Context, fs storage.FileStore, name string) (*Model, error) {
	a, err := LoadArtifact(ctx, fs, name)
	if err != nil {
		return nil, err
	}
	m, err := New(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelLoad, name, err)
	}
	return m, nil
}

// LoadLocation loads the artifact at a local path or s3:// URI. newS3 is
// only called for s3 locations.
func LoadLocation(ctx context.Context, location string, newS3 func(bucket string) (storage.S3Client, error)) (*Model, error) {
	loc, err := storage.ParseLocation(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	fs, name, err := storage.Resolve(loc, newS3)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	return Load(ctx, fs, name)
}

// Artifact returns the artifact the model was built from. It must not be
// modified.
func (m *Model) Artifact() *Artifact {
	return m.art
}

// FeatureFlags returns the feature selection recorded in the artifact, if
// any.
func (m *Model) FeatureFlags() (features.Flags, bool) {
	if m.art.Features == nil {
		return features.Flags{}, false
	}
	return *m.art.Features, true
}

// InputDim returns the expected feature vector length.
func (m *Model) InputDim() int {
	return m.art.InputDim()
}

// Classes returns a copy of the class codes the model can predict.
func (m *Model) Classes() []int {
	return slices.Clone(m.art.Classes)
}

// Predict returns the predicted class code of every row.
func (m *Model) Predict(batch [][]float64) ([]int, error) {
	out, err := m.forward(batch)
	if err != nil {
		return nil, err
	}
	preds := make([]int, len(batch))
	for i := range preds {
		row := out.RawRowView(i)
		if len(row) == 1 {
			if row[0] > 0.5 {
				preds[i] = m.art.Classes[1]
			} else {
				preds[i] = m.art.Classes[0]
			}
			continue
		}
		preds[i] = m.art.Classes[floats.MaxIdx(row)]
	}
	return preds, nil
}

// PredictProba returns per-class scores of every row, ordered like
// Classes. A single logistic unit p expands to [1-p, p].
func (m *Model) PredictProba(batch [][]float64) ([][]float64, error) {
	out, err := m.forward(batch)
	if err != nil {
		return nil, err
	}
	probs := make([][]float64, len(batch))
	for i := range probs {
		row := out.RawRowView(i)
		if len(row) == 1 {
			probs[i] = []float64{1 - row[0], row[0]}
			continue
		}
		probs[i] = slices.Clone(row)
	}
	return probs, nil
}

func (m *Model) forward(batch [][]float64) (*mat.Dense, error) {
	if len(batch) == 0 {
		return nil, errors.New("mlp: empty batch")
	}
	dim := m.InputDim()
	x := mat.NewDense(len(batch), dim, nil)
	for i, row := range batch {
		if len(row) != dim {
			return nil, &emotion.ShapeError{Want: dim, Got: len(row)}
		}
		x.SetRow(i, row)
	}

	last := len(m.weights) - 1
	for li, w := range m.weights {
		var z mat.Dense
		z.Mul(x, w)
		act := m.hidden
		if li == last {
			act = m.output
		}
		b := m.art.Layers[li].Biases
		rows, _ := z.Dims()
		for i := range rows {
			row := z.RawRowView(i)
			floats.Add(row, b)
			act.apply(row)
		}
		x = &z
	}
	return x, nil
}

var (
	_ emotion.Classifier = (*Model)(nil)
	_ emotion.ClassSet   = (*Model)(nil)
)
