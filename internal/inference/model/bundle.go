// Package model decodes serialized group-model bundles into fitted
// estimators and scalers that run without any training runtime.
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eduymaz/aller-mind/internal/inference/environment"
	"github.com/eduymaz/aller-mind/internal/inference/groups"
)

type Performance struct {
	TrainR2        float64 `json:"train_r2"`
	TestR2         float64 `json:"test_r2"`
	TrainMAE       float64 `json:"train_mae"`
	TestMAE        float64 `json:"test_mae"`
	OverfittingGap float64 `json:"overfitting_gap"`
}

type Target struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	MinHours float64 `json:"min_hours"`
	MaxHours float64 `json:"max_hours"`
}

// Bundle is the on-disk form of one group model.
type Bundle struct {
	GroupID     int           `json:"group_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Algorithm   string        `json:"algorithm"`
	Version     string        `json:"version,omitempty"`
	Features    []string      `json:"features"`
	Scaler      Scaler        `json:"scaler"`
	Estimator   EstimatorSpec `json:"estimator"`
	Performance Performance   `json:"performance"`
	Target      Target        `json:"target"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Metadata describes a loaded model without its fitted parameters.
type Metadata struct {
	GroupID     int         `json:"group_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Algorithm   string      `json:"algorithm"`
	Version     string      `json:"version,omitempty"`
	Features    []string    `json:"features"`
	Performance Performance `json:"performance"`
	Target      Target      `json:"target"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Model is a validated, read-only group model.
type Model struct {
	Meta      Metadata
	Scaler    *Scaler
	Estimator Estimator
}

// Decode reads and validates a JSON bundle.
func Decode(r io.Reader) (*Model, error) {
	var b Bundle
	dec := json.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return b.Build()
}

// Build validates the bundle and instantiates its estimator.
func (b Bundle) Build() (*Model, error) {
	est, err := b.Estimator.Build()
	if err != nil {
		return nil, err
	}
	scaler := b.Scaler
	scaler.Center = append([]float64(nil), b.Scaler.Center...)
	scaler.Scale = append([]float64(nil), b.Scaler.Scale...)
	scaler.Offset = append([]float64(nil), b.Scaler.Offset...)
	return New(Metadata{
		GroupID:     b.GroupID,
		Name:        b.Name,
		Description: b.Description,
		Algorithm:   b.Algorithm,
		Version:     b.Version,
		Features:    b.Features,
		Performance: b.Performance,
		Target:      b.Target,
		CreatedAt:   b.CreatedAt,
	}, &scaler, est)
}

// New assembles a model from parts and checks that the feature list, the
// scaler and the estimator agree on input width.
func New(meta Metadata, scaler *Scaler, est Estimator) (*Model, error) {
	if !groups.Valid(meta.GroupID) {
		return nil, fmt.Errorf("%w: group_id %d outside 1..%d", ErrInvalidBundle, meta.GroupID, groups.Count)
	}
	if est == nil {
		return nil, fmt.Errorf("%w: group %d has no estimator", ErrInvalidBundle, meta.GroupID)
	}
	if len(meta.Features) == 0 {
		return nil, fmt.Errorf("%w: group %d has no features", ErrInvalidBundle, meta.GroupID)
	}
	seen := make(map[string]bool, len(meta.Features))
	for _, f := range meta.Features {
		if !environment.IsKnownFeature(f) {
			return nil, fmt.Errorf("%w: group %d feature %q", ErrUnknownFeature, meta.GroupID, f)
		}
		if seen[f] {
			return nil, fmt.Errorf("%w: group %d lists feature %q twice", ErrInvalidBundle, meta.GroupID, f)
		}
		seen[f] = true
	}

	n := len(meta.Features)
	if got := est.NumFeatures(); got != n {
		return nil, &DimensionError{Component: est.Kind() + " estimator", Want: got, Got: n}
	}
	meta.Features = append([]string(nil), meta.Features...)
	if scaler == nil {
		scaler = &Scaler{Kind: ScalerIdentity}
	}
	scaler = scaler.clone()
	if err := scaler.validate(n); err != nil {
		return nil, err
	}
	scaler.names = meta.Features
	if strings.TrimSpace(meta.Name) == "" {
		meta.Name = groups.Name(meta.GroupID)
	}
	if strings.TrimSpace(meta.Algorithm) == "" {
		meta.Algorithm = est.Kind()
	}
	return &Model{Meta: meta, Scaler: scaler, Estimator: est}, nil
}

// Vector selects the model's features from an engineered reading in order.
func (m *Model) Vector(r environment.Reading) []float64 {
	out := make([]float64, len(m.Meta.Features))
	for i, f := range m.Meta.Features {
		out[i] = r.Get(f)
	}
	return out
}
