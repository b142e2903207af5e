package model

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/eduymaz/aller-mind/internal/inference/environment"
)

const linearBundle = `{
  "group_id": 2,
  "name": "Air Pollution Sensitivity",
  "algorithm": "Ridge",
  "features": ["pm10", "pm2_5", "ozone"],
  "scaler": {"kind": "robust", "center": [20, 12, 100], "scale": [10, 6, 40]},
  "estimator": {"kind": "linear", "params": {"coef": [-0.03, -0.05, -0.01], "intercept": 9.5}},
  "performance": {"train_r2": 0.99, "test_r2": 0.97, "test_mae": 0.2},
  "created_at": "2025-05-01T10:00:00Z"
}`

func TestDecodeLinearBundle(t *testing.T) {
	m, err := Decode(strings.NewReader(linearBundle))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.Meta.GroupID != 2 || m.Meta.Performance.TestR2 != 0.97 {
		t.Fatalf("meta=%+v", m.Meta)
	}
	if m.Estimator.RequiresScaling() {
		t.Fatalf("unscaled linear model reports scaling")
	}

	r, _ := environment.ValidateFloats(map[string]float64{"pm10": 50, "pm2_5": 20, "ozone": 100})
	x := m.Vector(environment.Engineer(r))
	got, err := m.Estimator.Predict(x)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := 9.5 - 1.5 - 1.0 - 1.0
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("predict=%v want %v", got, want)
	}
}

func TestNewRejectsStructuralProblems(t *testing.T) {
	lin := &Linear{Coef: []float64{1, 2}}

	_, err := New(Metadata{GroupID: 1, Features: []string{"pm10"}}, nil, lin)
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("want DimensionError, got %v", err)
	}

	_, err = New(Metadata{GroupID: 1, Features: []string{"pm10", "not_a_feature"}}, nil, lin)
	if !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("want ErrUnknownFeature, got %v", err)
	}

	_, err = New(Metadata{GroupID: 6, Features: []string{"pm10", "ozone"}}, nil, lin)
	if !errors.Is(err, ErrInvalidBundle) {
		t.Fatalf("want ErrInvalidBundle for group 6, got %v", err)
	}

	_, err = New(Metadata{GroupID: 1, Features: []string{"pm10", "ozone"}},
		&Scaler{Kind: ScalerStandard, Center: []float64{0, 0, 0}, Scale: []float64{1, 1, 1}}, lin)
	if !errors.As(err, &dimErr) {
		t.Fatalf("want scaler DimensionError, got %v", err)
	}

	_, err = EstimatorSpec{Kind: "xgboost", Params: []byte(`{}`)}.Build()
	if !errors.Is(err, ErrUnknownEstimator) {
		t.Fatalf("want ErrUnknownEstimator, got %v", err)
	}
}

func TestScalerTransform(t *testing.T) {
	s := &Scaler{Kind: ScalerRobust, Center: []float64{10, 0}, Scale: []float64{2, 0}}
	if err := s.validate(2); err != nil {
		t.Fatalf("validate: %v", err)
	}
	out, err := s.Transform([]float64{14, 3})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out[0] != 2 || out[1] != 3 {
		t.Fatalf("out=%v (zero scale should act as 1)", out)
	}

	_, err = s.Transform([]float64{math.MaxFloat64, 0})
	if err != nil {
		t.Fatalf("finite input should scale: %v", err)
	}
	big := &Scaler{Kind: ScalerMinMax, Scale: []float64{math.MaxFloat64}, Offset: []float64{0}}
	_, err = big.Transform([]float64{10})
	var scErr *ScalingError
	if !errors.As(err, &scErr) {
		t.Fatalf("want ScalingError, got %v", err)
	}

	_, err = s.Transform([]float64{1})
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("want DimensionError, got %v", err)
	}
}

// stump splits feature 0 at 5: left 2, right 8.
func stump(left, right float64) Tree {
	return Tree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{0, 0, 0},
		Threshold:     []float64{5, 0, 0},
		Value:         []float64{0, left, right},
	}
}

func TestTreeEnsembleAggregation(t *testing.T) {
	forest := &TreeEnsemble{NFeatures: 1, Trees: []Tree{stump(2, 8), stump(4, 6)}}
	if err := forest.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got, _ := forest.Predict([]float64{5}); got != 3 {
		t.Fatalf("forest left=%v want 3", got)
	}
	if got, _ := forest.Predict([]float64{5.1}); got != 7 {
		t.Fatalf("forest right=%v want 7", got)
	}

	boosted := &TreeEnsemble{NFeatures: 1, Aggregation: "sum", Init: 4, LearningRate: 0.5, Trees: []Tree{stump(-1, 1), stump(-2, 2)}}
	if err := boosted.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got, _ := boosted.Predict([]float64{9}); got != 5.5 {
		t.Fatalf("boosted=%v want 5.5", got)
	}

	cyclic := &TreeEnsemble{NFeatures: 1, Trees: []Tree{{
		ChildrenLeft:  []int{0},
		ChildrenRight: []int{0},
		Feature:       []int{0},
		Threshold:     []float64{0},
		Value:         []float64{1},
	}}}
	if err := cyclic.validate(); !errors.Is(err, ErrInvalidBundle) {
		t.Fatalf("cyclic tree accepted: %v", err)
	}
}

func TestSVRAndMLP(t *testing.T) {
	svr := &SVR{Gamma: 0.5, SupportVectors: [][]float64{{0, 0}, {1, 1}}, DualCoef: []float64{2, -1}, Intercept: 3}
	if err := svr.validate(); err != nil {
		t.Fatalf("svr validate: %v", err)
	}
	got, err := svr.Predict([]float64{0, 0})
	if err != nil {
		t.Fatalf("svr predict: %v", err)
	}
	want := 3 + 2 - math.Exp(-1)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("svr=%v want %v", got, want)
	}

	mlp := &MLP{
		Activation: "relu",
		Layers: []Layer{
			{Weights: [][]float64{{1, -1}, {1, 1}}, Biases: []float64{0, 0}},
			{Weights: [][]float64{{2}, {3}}, Biases: []float64{0.5}},
		},
	}
	if err := mlp.validate(); err != nil {
		t.Fatalf("mlp validate: %v", err)
	}
	// hidden = relu([1+2, -1+2]) = [3, 1]; out = 6 + 3 + 0.5
	if got, _ := mlp.Predict([]float64{1, 2}); got != 9.5 {
		t.Fatalf("mlp=%v want 9.5", got)
	}
	if _, err := mlp.Predict([]float64{1}); err == nil {
		t.Fatalf("mlp accepted wrong width")
	}
}

func TestNewLeavesCallerSlicesUntouched(t *testing.T) {
	features := []string{"pm10", "pm2_5"}
	s := &Scaler{Kind: ScalerRobust, Center: []float64{0, 0}, Scale: []float64{0, 2}}
	m, err := New(Metadata{GroupID: 2, Features: features}, s, &Linear{Coef: []float64{1, 1}, Scaled: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Scale[0] != 0 {
		t.Fatalf("caller scale rewritten: %v", s.Scale)
	}
	if m.Scaler.Scale[0] != 1 {
		t.Fatalf("model scale=%v want zero replaced by 1", m.Scaler.Scale)
	}

	features[0] = "ozone"
	if m.Meta.Features[0] != "pm10" || m.Scaler.names[0] != "pm10" {
		t.Fatalf("model shares caller features: meta=%v scaler=%v", m.Meta.Features, m.Scaler.names)
	}
}
