// Package mlp loads and runs a frozen multilayer perceptron classifier.
//
// The network is stored as an [Artifact]: the class codes, the hidden and
// output activations and, per layer, a weight matrix of shape [in][out]
// with a bias per output unit. Artifacts are exchanged as msgpack (the
// default), JSON or YAML, and are read through a [storage.FileStore] so
// they can live on disk or in an object store.
//
// A two-class network with a single logistic output unit predicts
// Classes[1] when the unit exceeds 0.5 and Classes[0] otherwise. Every other
// head predicts the class of its largest output.
package mlp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/rahul24/CritiqueForTeams/pkg/audio/features"
)

// ErrInvalid is returned for artifacts that do not describe a usable
// network.
var ErrInvalid = errors.New("mlp: invalid artifact")

// Layer is one fully connected layer.
type Layer struct {
	// Weights has one row per input unit and one column per output unit.
	Weights [][]float64 `json:"weights" yaml:"weights" msgpack:"weights"`
	Biases  []float64   `json:"biases" yaml:"biases" msgpack:"biases"`
}

// In returns the number of input units.
func (l Layer) In() int { return len(l.Weights) }

// Out returns the number of output units.
func (l Layer) Out() int { return len(l.Biases) }

// Artifact is the serialized form of a trained network.
type Artifact struct {
	Name             string          `json:"name,omitzero" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Classes          []int           `json:"classes" yaml:"classes" msgpack:"classes"`
	HiddenActivation Activation      `json:"hidden_activation,omitzero" yaml:"hidden_activation,omitempty" msgpack:"hidden_activation,omitempty"`
	OutputActivation Activation      `json:"output_activation,omitzero" yaml:"output_activation,omitempty" msgpack:"output_activation,omitempty"`
	Features         *features.Flags `json:"features,omitempty" yaml:"features,omitempty" msgpack:"features,omitempty"`
	Layers           []Layer         `json:"layers" yaml:"layers" msgpack:"layers"`
}

// InputDim returns the width of the first layer, or 0 without layers.
func (a *Artifact) InputDim() int {
	if len(a.Layers) == 0 {
		return 0
	}
	return a.Layers[0].In()
}

// Shape returns the unit counts from the input through every layer.
func (a *Artifact) Shape() []int {
	if len(a.Layers) == 0 {
		return nil
	}
	shape := []int{a.Layers[0].In()}
	for _, l := range a.Layers {
		shape = append(shape, l.Out())
	}
	return shape
}

// hidden returns the effective hidden activation.
func (a *Artifact) hidden() Activation {
	if a.HiddenActivation == "" {
		return ReLU
	}
	return a.HiddenActivation
}

// output returns the effective output activation.
func (a *Artifact) output() Activation {
	if a.OutputActivation != "" {
		return a.OutputActivation
	}
	if len(a.Classes) == 2 {
		return Logistic
	}
	return Softmax
}

// Validate checks that the layers chain and that the output head matches
// the class set.
func (a *Artifact) Validate() error {
	if len(a.Classes) < 2 {
		return fmt.Errorf("%w: need at least 2 classes, got %d", ErrInvalid, len(a.Classes))
	}
	seen := make(map[int]bool, len(a.Classes))
	for _, c := range a.Classes {
		if seen[c] {
			return fmt.Errorf("%w: duplicate class %d", ErrInvalid, c)
		}
		seen[c] = true
	}
	if !a.HiddenActivation.IsValid() || a.HiddenActivation == Softmax {
		return fmt.Errorf("%w: hidden activation %q", ErrInvalid, a.HiddenActivation)
	}
	if out := a.output(); !out.IsValid() || out == ReLU || out == Tanh {
		return fmt.Errorf("%w: output activation %q", ErrInvalid, out)
	}
	if len(a.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrInvalid)
	}

	prev := a.Layers[0].In()
	for i, l := range a.Layers {
		if l.In() == 0 || l.Out() == 0 {
			return fmt.Errorf("%w: layer %d is empty", ErrInvalid, i)
		}
		if l.In() != prev {
			return fmt.Errorf("%w: layer %d has %d inputs, previous layer has %d outputs", ErrInvalid, i, l.In(), prev)
		}
		for r, row := range l.Weights {
			if len(row) != l.Out() {
				return fmt.Errorf("%w: layer %d weight row %d has %d columns, want %d", ErrInvalid, i, r, len(row), l.Out())
			}
			if !finite(row) {
				return fmt.Errorf("%w: layer %d has non-finite weights", ErrInvalid, i)
			}
		}
		if !finite(l.Biases) {
			return fmt.Errorf("%w: layer %d has non-finite biases", ErrInvalid, i)
		}
		prev = l.Out()
	}

	switch want := len(a.Classes); {
	case a.output() == Logistic && want == 2 && prev == 1:
	case prev == want:
	default:
		return fmt.Errorf("%w: %d output units for %d classes", ErrInvalid, prev, want)
	}
	return nil
}

func finite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Format is an artifact encoding.
type Format string

// Supported formats.
const (
	FormatMsgpack Format = "msgpack"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// FormatFor picks the format from a file name's extension. Unknown
// extensions are read as msgpack.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatMsgpack
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "msgpack", "mpk":
		return FormatMsgpack, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("mlp: unknown format %q", s)
}

// Decode parses and validates an artifact.
func Decode(data []byte, f Format) (*Artifact, error) {
	var a Artifact
	var err error
	switch f {
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &a)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&a)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&a)
	default:
		return nil, fmt.Errorf("mlp: unknown format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, f, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Encode writes a in format f.
func Encode(w io.Writer, a *Artifact, f Format) error {
	switch f {
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(a)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(a); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("mlp: unknown format %q", f)
}
