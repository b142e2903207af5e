// Package sample builds small hand-fitted demonstration bundles, one per
// estimator family, so the service can run end to end without trained
// artifacts.
package sample

import (
	"fmt"
	"math"
	"time"

	"github.com/eduymaz/aller-mind/internal/inference/environment"
	"github.com/eduymaz/aller-mind/internal/inference/groups"
	"github.com/eduymaz/aller-mind/internal/inference/model"
)

const Version = "demo-1"

var created = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// Bundles returns demonstration bundles for all five groups.
func Bundles() ([]model.Bundle, error) {
	builders := []func() (model.Bundle, error){pollen, airPollution, uv, meteorological, sensitive}
	out := make([]model.Bundle, 0, len(builders))
	for _, build := range builders {
		b, err := build()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Models returns the demonstration bundles already built.
func Models() ([]*model.Model, error) {
	bundles, err := Bundles()
	if err != nil {
		return nil, err
	}
	out := make([]*model.Model, 0, len(bundles))
	for _, b := range bundles {
		m, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", b.GroupID, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func base(id int, perf model.Performance) model.Bundle {
	info, _ := groups.Get(id)
	perf.OverfittingGap = perf.TrainR2 - perf.TestR2
	return model.Bundle{
		GroupID:     id,
		Name:        info.Name,
		Description: info.Description,
		Algorithm:   info.Algorithm,
		Version:     Version,
		Features:    groups.Features(id),
		Performance: perf,
		Target:      model.Target{Name: "safe_outdoor_hours", Unit: "hours", MinHours: 0.5, MaxHours: 8.5},
		CreatedAt:   created,
	}
}

func index(features []string, name string) int {
	for i, f := range features {
		if f == name {
			return i
		}
	}
	panic("sample: unknown feature " + name)
}

// stump returns a depth-one tree on feature f.
func stump(f int, threshold, left, right float64) model.Tree {
	return model.Tree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{f, 0, 0},
		Threshold:     []float64{threshold, 0, 0},
		Value:         []float64{0, left, right},
	}
}

// spreads overrides the scale of features whose typical range is far from
// their reference value.
var spreads = map[string]float64{
	"upi_value":         100,
	"plant_upi_value":   100,
	"pollen_risk_index": 100,
	"aqi_combined":      30,
	"lat":               10,
	"lon":               10,
	"hour":              12,
	"day_of_week":       3,
}

// robustScaler centers every feature on its value in the all-defaults
// reading, so a default day scales to the zero vector.
func robustScaler(features []string) model.Scaler {
	empty, _ := environment.Validate(nil)
	ref := environment.Engineer(empty)
	s := model.Scaler{Kind: model.ScalerRobust, Center: make([]float64, len(features)), Scale: make([]float64, len(features))}
	for i, f := range features {
		s.Center[i] = ref.Get(f)
		if spread, ok := spreads[f]; ok {
			s.Scale[i] = spread
		} else {
			s.Scale[i] = math.Max(math.Abs(s.Center[i]), 1)
		}
	}
	return s
}

func pollen() (model.Bundle, error) {
	b := base(groups.Pollen, model.Performance{TrainR2: 0.991, TestR2: 0.982, TrainMAE: 0.11, TestMAE: 0.16})
	f := b.Features
	spec, err := model.NewSpec(model.KindTreeEnsemble, model.TreeEnsemble{
		NFeatures:   len(f),
		Aggregation: model.AggregateMean,
		Trees: []model.Tree{
			stump(index(f, "upi_value"), 100, 7.6, 3.2),
			stump(index(f, "plant_upi_value"), 80, 7.4, 3.8),
			stump(index(f, "pollen_risk_index"), 60, 7.8, 3.0),
		},
	})
	b.Estimator = spec
	return b, err
}

func airPollution() (model.Bundle, error) {
	b := base(groups.AirPollution, model.Performance{TrainR2: 0.989, TestR2: 0.975, TrainMAE: 0.14, TestMAE: 0.21})
	f := b.Features
	spec, err := model.NewSpec(model.KindTreeEnsemble, model.TreeEnsemble{
		NFeatures:    len(f),
		Aggregation:  model.AggregateSum,
		Init:         6.0,
		LearningRate: 0.5,
		Trees: []model.Tree{
			stump(index(f, "pm10"), 50, 2.0, -3.0),
			stump(index(f, "pm2_5"), 25, 1.0, -3.5),
			stump(index(f, "ozone"), 120, 0.5, -2.5),
		},
	})
	b.Estimator = spec
	return b, err
}

func uv() (model.Bundle, error) {
	b := base(groups.UV, model.Performance{TrainR2: 0.978, TestR2: 0.961, TrainMAE: 0.19, TestMAE: 0.27})
	b.Scaler = robustScaler(b.Features)
	n := len(b.Features)
	calm := make([]float64, n)
	harsh := make([]float64, n)
	harsh[index(b.Features, "uv_index")] = 1.0
	harsh[index(b.Features, "uv_danger_level")] = 2.0
	harsh[index(b.Features, "sunshine_duration")] = 0.5
	spec, err := model.NewSpec(model.KindSVR, model.SVR{
		Kernel:         model.KernelRBF,
		Gamma:          0.25,
		SupportVectors: [][]float64{calm, harsh},
		DualCoef:       []float64{1.5, -4.0},
		Intercept:      8.3,
	})
	b.Estimator = spec
	return b, err
}

func meteorological() (model.Bundle, error) {
	b := base(groups.Meteorological, model.Performance{TrainR2: 0.970, TestR2: 0.957, TrainMAE: 0.22, TestMAE: 0.29})
	f := b.Features
	spec, err := model.NewSpec(model.KindTreeEnsemble, model.TreeEnsemble{
		NFeatures:   len(f),
		Aggregation: model.AggregateMean,
		Trees: []model.Tree{
			stump(index(f, "wind_speed_10m"), 15, 9.0, 4.5),
			stump(index(f, "relative_humidity_2m"), 80, 8.6, 5.0),
			stump(index(f, "comfort_index"), 30, 8.9, 3.5),
		},
	})
	b.Estimator = spec
	return b, err
}

func sensitive() (model.Bundle, error) {
	b := base(groups.Sensitive, model.Performance{TrainR2: 0.984, TestR2: 0.968, TrainMAE: 0.15, TestMAE: 0.24})
	b.Scaler = robustScaler(b.Features)
	f := b.Features
	n := len(f)

	// One hidden unit accumulates pollution and UV load, the other is a bias path.
	hidden := make([][]float64, n)
	for i := range hidden {
		hidden[i] = []float64{0, 0}
	}
	hidden[index(f, "pm10")][0] = 0.3
	hidden[index(f, "pm2_5")][0] = 0.4
	hidden[index(f, "ozone")][0] = 0.25
	hidden[index(f, "uv_index")][0] = 0.2
	hidden[index(f, "upi_value")][0] = 0.01
	hidden[index(f, "temperature_2m")][1] = 0.2

	spec, err := model.NewSpec(model.KindMLP, model.MLP{
		Activation: "relu",
		Layers: []model.Layer{
			{Weights: hidden, Biases: []float64{0, 0}},
			{Weights: [][]float64{{-1.6}, {-0.5}}, Biases: []float64{8.9}},
		},
	})
	b.Estimator = spec
	return b, err
}
