package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownEstimator = errors.New("unknown estimator kind")
	ErrUnknownScaler    = errors.New("unknown scaler kind")
	ErrUnknownFeature   = errors.New("unknown feature name")
	ErrInvalidBundle    = errors.New("invalid model bundle")
)

// DimensionError reports an input vector whose length does not match what a
// fitted component expects. It is always a structural problem.
type DimensionError struct {
	Component string
	Want      int
	Got       int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s expects %d features, got %d", e.Component, e.Want, e.Got)
}

// ScalingError reports a scaler transform that produced a non-finite value.
type ScalingError struct {
	Feature string
	Index   int
	Value   float64
}

func (e *ScalingError) Error() string {
	return fmt.Sprintf("scaling feature %q (index %d) produced %v", e.Feature, e.Index, e.Value)
}

// PredictionError reports a non-finite estimator output.
type PredictionError struct {
	Kind  string
	Value float64
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("%s estimator produced non-finite output %v", e.Kind, e.Value)
}
