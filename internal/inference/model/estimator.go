package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	KindLinear       = "linear"
	KindTreeEnsemble = "tree_ensemble"
	KindSVR          = "svr"
	KindMLP          = "mlp"
)

// Estimator is a fitted regressor producing a base safe-hours value.
type Estimator interface {
	Kind() string
	NumFeatures() int
	// RequiresScaling reports whether inputs must pass through the bundle's
	// scaler. Distance and gradient based models need it, trees do not.
	RequiresScaling() bool
	Predict(x []float64) (float64, error)
}

type buildable interface {
	Estimator
	validate() error
}

// EstimatorSpec is the serialized form of an estimator: a kind tag plus
// kind-specific parameters.
type EstimatorSpec struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params"`
}

// NewSpec serializes params under kind.
func NewSpec(kind string, params any) (EstimatorSpec, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return EstimatorSpec{}, err
	}
	return EstimatorSpec{Kind: kind, Params: b}, nil
}

// Build decodes the spec into a validated estimator.
func (s EstimatorSpec) Build() (Estimator, error) {
	var est buildable
	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case KindLinear:
		est = &Linear{}
	case KindTreeEnsemble, "random_forest", "extra_trees", "gradient_boosting":
		est = &TreeEnsemble{}
	case KindSVR:
		est = &SVR{}
	case KindMLP, "neural_network":
		est = &MLP{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEstimator, s.Kind)
	}
	if len(s.Params) == 0 {
		return nil, fmt.Errorf("%w: %s estimator has no params", ErrInvalidBundle, s.Kind)
	}
	if err := json.Unmarshal(s.Params, est); err != nil {
		return nil, fmt.Errorf("%w: decode %s params: %v", ErrInvalidBundle, s.Kind, err)
	}
	if err := est.validate(); err != nil {
		return nil, err
	}
	return est, nil
}

func checkWidth(kind string, want int, x []float64) error {
	if len(x) != want {
		return &DimensionError{Component: kind + " estimator", Want: want, Got: len(x)}
	}
	return nil
}

func finite(kind string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &PredictionError{Kind: kind, Value: v}
	}
	return v, nil
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
