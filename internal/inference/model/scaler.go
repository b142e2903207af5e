package model

import (
	"fmt"
	"math"
	"strings"
)

const (
	ScalerIdentity = "identity"
	ScalerStandard = "standard"
	ScalerRobust   = "robust"
	ScalerMinMax   = "minmax"
)

// Scaler is a fitted per-feature affine transform.
//
// standard and robust compute (x - Center) / Scale. minmax computes
// x*Scale + Offset, the fitted form of a min-max scaler.
type Scaler struct {
	Kind   string    `json:"kind"`
	Center []float64 `json:"center,omitempty"`
	Scale  []float64 `json:"scale,omitempty"`
	Offset []float64 `json:"offset,omitempty"`

	names []string
}

// NumFeatures is 0 for the identity scaler, which accepts any width.
func (s *Scaler) NumFeatures() int {
	if s.kind() == ScalerIdentity {
		return 0
	}
	return len(s.Scale)
}

// clone copies s so validation never writes to the caller's slices.
func (s *Scaler) clone() *Scaler {
	return &Scaler{
		Kind:   s.Kind,
		Center: append([]float64(nil), s.Center...),
		Scale:  append([]float64(nil), s.Scale...),
		Offset: append([]float64(nil), s.Offset...),
	}
}

func (s *Scaler) kind() string {
	k := strings.ToLower(strings.TrimSpace(s.Kind))
	if k == "" {
		return ScalerIdentity
	}
	return k
}

func (s *Scaler) validate(n int) error {
	switch s.kind() {
	case ScalerIdentity:
		return nil
	case ScalerStandard, ScalerRobust:
		if len(s.Center) != len(s.Scale) {
			return fmt.Errorf("%w: scaler center has %d values, scale has %d", ErrInvalidBundle, len(s.Center), len(s.Scale))
		}
	case ScalerMinMax:
		if len(s.Offset) != len(s.Scale) {
			return fmt.Errorf("%w: scaler offset has %d values, scale has %d", ErrInvalidBundle, len(s.Offset), len(s.Scale))
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScaler, s.Kind)
	}
	if len(s.Scale) != n {
		return &DimensionError{Component: "scaler", Want: len(s.Scale), Got: n}
	}
	// Zero-variance features keep their centered value, as the fitting side does.
	for i, v := range s.Scale {
		if v == 0 && s.kind() != ScalerMinMax {
			s.Scale[i] = 1
		}
	}
	return nil
}

// Transform scales x. A length mismatch is a *DimensionError; a non-finite
// result is a *ScalingError and the caller decides whether to fall back.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	k := s.kind()
	if k == ScalerIdentity {
		return append([]float64(nil), x...), nil
	}
	if len(x) != len(s.Scale) {
		return nil, &DimensionError{Component: "scaler", Want: len(s.Scale), Got: len(x)}
	}
	out := make([]float64, len(x))
	for i, v := range x {
		switch k {
		case ScalerMinMax:
			out[i] = v*s.Scale[i] + s.Offset[i]
		default:
			out[i] = (v - s.Center[i]) / s.Scale[i]
		}
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			name := ""
			if i < len(s.names) {
				name = s.names[i]
			}
			return nil, &ScalingError{Feature: name, Index: i, Value: out[i]}
		}
	}
	return out, nil
}
