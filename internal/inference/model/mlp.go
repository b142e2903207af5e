package model

import (
	"fmt"
	"math"
	"strings"
)

// Layer is a dense layer. Weights is indexed [input][output].
type Layer struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// MLP is a fitted feed-forward regressor. Hidden layers use Activation and
// the output layer is the identity with a single unit.
type MLP struct {
	Activation string  `json:"activation"`
	Layers     []Layer `json:"layers"`
}

func (m *MLP) Kind() string          { return KindMLP }
func (m *MLP) RequiresScaling() bool { return true }

func (m *MLP) NumFeatures() int {
	if len(m.Layers) == 0 {
		return 0
	}
	return len(m.Layers[0].Weights)
}

func (m *MLP) validate() error {
	m.Activation = strings.ToLower(strings.TrimSpace(m.Activation))
	switch m.Activation {
	case "":
		m.Activation = "relu"
	case "relu", "tanh", "logistic", "identity":
	default:
		return fmt.Errorf("%w: unsupported mlp activation %q", ErrInvalidBundle, m.Activation)
	}
	if len(m.Layers) == 0 {
		return fmt.Errorf("%w: mlp has no layers", ErrInvalidBundle)
	}
	for li, l := range m.Layers {
		if len(l.Weights) == 0 {
			return fmt.Errorf("%w: mlp layer %d has no weights", ErrInvalidBundle, li)
		}
		out := len(l.Biases)
		for _, row := range l.Weights {
			if len(row) != out {
				return fmt.Errorf("%w: mlp layer %d weight row has %d outputs, biases have %d", ErrInvalidBundle, li, len(row), out)
			}
		}
		if li > 0 && len(l.Weights) != len(m.Layers[li-1].Biases) {
			return fmt.Errorf("%w: mlp layer %d expects %d inputs, previous layer emits %d", ErrInvalidBundle, li, len(l.Weights), len(m.Layers[li-1].Biases))
		}
	}
	if last := m.Layers[len(m.Layers)-1]; len(last.Biases) != 1 {
		return fmt.Errorf("%w: mlp output layer has %d units, want 1", ErrInvalidBundle, len(last.Biases))
	}
	return nil
}

func (m *MLP) activate(v float64) float64 {
	switch m.Activation {
	case "tanh":
		return math.Tanh(v)
	case "logistic":
		return 1 / (1 + math.Exp(-v))
	case "identity":
		return v
	default:
		return math.Max(0, v)
	}
}

func (m *MLP) Predict(x []float64) (float64, error) {
	if err := checkWidth(KindMLP, m.NumFeatures(), x); err != nil {
		return 0, err
	}
	act := x
	for li, l := range m.Layers {
		next := append([]float64(nil), l.Biases...)
		for i, in := range act {
			for j, w := range l.Weights[i] {
				next[j] += in * w
			}
		}
		if li < len(m.Layers)-1 {
			for j := range next {
				next[j] = m.activate(next[j])
			}
		}
		act = next
	}
	return finite(KindMLP, act[0])
}
