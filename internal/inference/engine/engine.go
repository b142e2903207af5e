// Package engine runs the per-group predictors and combines them into the
// performance-weighted ensemble.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/eduymaz/aller-mind/internal/inference/environment"
	"github.com/eduymaz/aller-mind/internal/inference/groups"
	"github.com/eduymaz/aller-mind/internal/inference/hours"
	"github.com/eduymaz/aller-mind/internal/inference/model"
	"github.com/eduymaz/aller-mind/internal/inference/profile"
	"github.com/eduymaz/aller-mind/internal/inference/weight"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

var (
	ErrInvalidGroup     = errors.New("invalid group id")
	ErrGroupUnavailable = errors.New("group model unavailable")
	ErrNoReliableModels = errors.New("no reliable models")
)

// DefaultReliabilityThreshold is the test R² a model must strictly exceed to
// take part in the ensemble.
const DefaultReliabilityThreshold = 0.95

// Models is the read-only model lookup the engine predicts with.
type Models interface {
	Get(groupID int) (*model.Model, bool)
}

type Options struct {
	ReliabilityThreshold float64
	// Locale selects the recommendation language ("en" or "tr").
	Locale string
}

type Engine struct {
	models    Models
	log       *logger.Logger
	tracer    trace.Tracer
	threshold float64
	locale    string
}

func New(models Models, log *logger.Logger, opts Options) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	threshold := opts.ReliabilityThreshold
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultReliabilityThreshold
	}
	locale := strings.ToLower(strings.TrimSpace(opts.Locale))
	if locale == "" {
		locale = "en"
	}
	return &Engine{
		models:    models,
		log:       log.With("service", "PredictionEngine"),
		tracer:    otel.Tracer("github.com/eduymaz/aller-mind/internal/inference/engine"),
		threshold: threshold,
		locale:    locale,
	}
}

func (e *Engine) Threshold() float64 { return e.threshold }

func (e *Engine) Locale() string { return e.locale }

// input is a validated and feature-engineered reading.
type input struct {
	engineered environment.Reading
	missing    []string
}

func prepare(data map[string]any) input {
	r, missing := environment.Validate(data)
	return input{engineered: environment.Engineer(r), missing: missing}
}

// PredictGroup runs one group's model on data and applies the personal
// weighting. A nil params means no personalization.
func (e *Engine) PredictGroup(ctx context.Context, data map[string]any, groupID int, params *profile.Params) (*GroupPrediction, error) {
	if !groups.Valid(groupID) {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidGroup, groupID, groups.Count)
	}
	ctx, span := e.tracer.Start(ctx, "engine.PredictGroup", trace.WithAttributes(attribute.Int("group_id", groupID)))
	defer span.End()

	p, err := e.predict(ctx, prepare(data), groupID, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Float64("safe_hours", p.PersonalSafeHours), attribute.String("risk_level", string(p.RiskLevel)))
	return p, nil
}

func (e *Engine) predict(ctx context.Context, in input, groupID int, params *profile.Params) (*GroupPrediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, ok := e.models.Get(groupID)
	if !ok {
		return nil, fmt.Errorf("%w: group %d", ErrGroupUnavailable, groupID)
	}

	x := m.Vector(in.engineered)
	fallback := false
	if m.Estimator.RequiresScaling() {
		scaled, err := m.Scaler.Transform(x)
		var scErr *model.ScalingError
		switch {
		case errors.As(err, &scErr):
			e.log.Warn("scaling failed, predicting on unscaled input",
				"group_id", groupID,
				"feature", scErr.Feature,
				"value", scErr.Value,
			)
			fallback = true
		case err != nil:
			return nil, fmt.Errorf("group %d: %w", groupID, err)
		default:
			x = scaled
		}
	}

	base, err := m.Estimator.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("group %d: %w", groupID, err)
	}

	w := weight.Compute(params, groupID)
	t := hours.Translate(base, w.Multiplier)
	return &GroupPrediction{
		GroupID:            groupID,
		GroupName:          m.Meta.Name,
		Algorithm:          m.Meta.Algorithm,
		BaseSafeHours:      base,
		PersonalMultiplier: w.Multiplier,
		PersonalSafeHours:  t.SafeHours,
		RiskScore:          t.RiskScore,
		RiskLevel:          t.RiskLevel,
		MissingFeatures:    append([]string{}, in.missing...),
		Performance:        m.Meta.Performance,
		ScalingFallback:    fallback,
		Weights:            w,
	}, nil
}
