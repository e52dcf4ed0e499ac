package mlp

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Activation names a layer activation function.
type Activation string

// Activation constants.
const (
	Identity Activation = "identity"
	Logistic Activation = "logistic"
	Tanh     Activation = "tanh"
	ReLU     Activation = "relu"
	Softmax  Activation = "softmax" // output layer only
)

var validActivations = map[string]struct{}{
	string(Identity): {},
	string(Logistic): {},
	string(Tanh):     {},
	string(ReLU):     {},
	string(Softmax):  {},
}

// IsValid returns true if the activation is known. Empty selects the
// default for the layer position.
func (a Activation) IsValid() bool {
	if a == "" {
		return true
	}
	_, ok := validActivations[string(a)]
	return ok
}

// UnmarshalJSON implements json.Unmarshaler with validation.
func (a *Activation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return a.set(s)
}

// UnmarshalMsgpack implements msgpack.Unmarshaler with validation.
func (a *Activation) UnmarshalMsgpack(data []byte) error {
	var s string
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return err
	}
	return a.set(s)
}

// UnmarshalYAML implements yaml.Unmarshaler with validation.
func (a *Activation) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return a.set(s)
}

func (a *Activation) set(s string) error {
	v := Activation(s)
	if !v.IsValid() {
		return fmt.Errorf("invalid activation: %q", s)
	}
	*a = v
	return nil
}

// apply transforms one row of pre-activations in place.
func (a Activation) apply(row []float64) {
	switch a {
	case Logistic:
		for i, x := range row {
			row[i] = logistic(x)
		}
	case Tanh:
		for i, x := range row {
			row[i] = math.Tanh(x)
		}
	case ReLU:
		for i, x := range row {
			if x < 0 {
				row[i] = 0
			}
		}
	case Softmax:
		m := math.Inf(-1)
		for _, x := range row {
			m = max(m, x)
		}
		var sum float64
		for i, x := range row {
			row[i] = math.Exp(x - m)
			sum += row[i]
		}
		for i := range row {
			row[i] /= sum
		}
	}
}

func logistic(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
