package emotion

import (
	"errors"
	"fmt"
	"log/slog"
)

// Classifier is a frozen model that predicts one class code per row.
type Classifier interface {
	// Predict returns one class code for each row of batch.
	Predict(batch [][]float64) ([]int, error)

	// InputDim returns the expected row length.
	InputDim() int
}

// ClassSet is implemented by classifiers that can enumerate the codes they
// may return.
type ClassSet interface {
	Classes() []int
}

// ClassifierFunc adapts a function to [Classifier] with a fixed input
// dimension.
type ClassifierFunc struct {
	Dim  int
	Func func(row []float64) (int, error)
}

// Predict calls Func once per row.
func (f ClassifierFunc) Predict(batch [][]float64) ([]int, error) {
	out := make([]int, len(batch))
	for i, row := range batch {
		c, err := f.Func(row)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// InputDim returns Dim.
func (f ClassifierFunc) InputDim() int {
	return f.Dim
}

// Prediction is the result of classifying one vector.
type Prediction struct {
	Code  int   `json:"code" yaml:"code"`
	Label Label `json:"label" yaml:"label"`
}

// Adapter turns a feature vector into a label through a classifier and a
// label table. It holds no mutable state.
type Adapter struct {
	clf    Classifier
	table  Table
	logger *slog.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter validates table against clf and returns an Adapter. A nil
// table means [DefaultTable]. If clf implements [ClassSet], every class it
// can return must be in the table.
func NewAdapter(clf Classifier, table Table, opts ...AdapterOption) (*Adapter, error) {
	if clf == nil {
		return nil, errors.New("emotion: nil classifier")
	}
	if table == nil {
		table = DefaultTable()
	}
	a := &Adapter{clf: clf, table: table, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	if cs, ok := clf.(ClassSet); ok {
		if err := table.Check(cs.Classes()); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// InputDim returns the classifier's input dimension.
func (a *Adapter) InputDim() int {
	return a.clf.InputDim()
}

// Table returns the label table.
func (a *Adapter) Table() Table {
	return a.table
}

// Classify predicts the label of a single feature vector.
func (a *Adapter) Classify(vec []float64) (Prediction, error) {
	if want := a.clf.InputDim(); len(vec) != want {
		return Prediction{}, &ShapeError{Want: want, Got: len(vec)}
	}
	codes, err := a.clf.Predict([][]float64{vec})
	if err != nil {
		return Prediction{}, fmt.Errorf("emotion: predict: %w", err)
	}
	if len(codes) == 0 {
		return Prediction{}, errors.New("emotion: classifier returned no prediction")
	}
	code := codes[0]
	label, err := a.table.Lookup(code)
	if err != nil {
		return Prediction{}, err
	}
	a.logger.Debug("emotion: classified", "code", code, "label", label.String())
	return Prediction{Code: code, Label: label}, nil
}
