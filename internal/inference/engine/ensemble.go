package engine

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/eduymaz/aller-mind/internal/inference/advice"
	"github.com/eduymaz/aller-mind/internal/inference/groups"
	"github.com/eduymaz/aller-mind/internal/inference/hours"
	"github.com/eduymaz/aller-mind/internal/inference/profile"
)

// PredictEnsemble predicts with every loaded group concurrently and combines
// the reliable ones by test R². Unavailable or failing groups are listed in
// Excluded. With no reliable group it returns ErrNoReliableModels.
func (e *Engine) PredictEnsemble(ctx context.Context, data map[string]any, params *profile.Params) (*EnsemblePrediction, error) {
	ctx, span := e.tracer.Start(ctx, "engine.PredictEnsemble")
	defer span.End()

	out, err := e.ensemble(ctx, data, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("reliable_models", out.ReliableModelCount),
		attribute.Float64("safe_hours", out.Ensemble.SafeHours),
		attribute.String("risk_level", string(out.Ensemble.RiskLevel)),
	)
	return out, nil
}

func (e *Engine) ensemble(ctx context.Context, data map[string]any, params *profile.Params) (*EnsemblePrediction, error) {
	in := prepare(data)
	ids := groups.IDs()
	preds := make([]*GroupPrediction, len(ids))
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			p, err := e.predict(gctx, in, id, params)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
				return nil
			}
			preds[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &EnsemblePrediction{
		MissingFeatures: append([]string{}, in.missing...),
		Individual:      []GroupPrediction{},
		ModelsUsed:      []int{},
	}
	var weighted, total float64
	var best, worst *GroupPrediction
	for i, id := range ids {
		if errs[i] != nil {
			reason := errs[i].Error()
			if !errors.Is(errs[i], ErrGroupUnavailable) {
				e.log.Warn("group prediction failed", "group_id", id, "error", errs[i])
			}
			out.Excluded = append(out.Excluded, Exclusion{GroupID: id, Reason: reason})
			continue
		}
		p := preds[i]
		out.Individual = append(out.Individual, *p)
		r2 := p.Performance.TestR2
		if best == nil || r2 > best.Performance.TestR2 {
			best = p
		}
		if worst == nil || r2 < worst.Performance.TestR2 {
			worst = p
		}
		if r2 <= e.threshold {
			out.Excluded = append(out.Excluded, Exclusion{
				GroupID: id,
				Reason:  fmt.Sprintf("test R² %.3f not above reliability threshold %.2f", r2, e.threshold),
			})
			continue
		}
		weighted += r2 * p.PersonalSafeHours
		total += r2
		out.ModelsUsed = append(out.ModelsUsed, id)
	}
	if best != nil {
		out.BestGroup, out.WorstGroup = best.GroupID, worst.GroupID
	}

	out.ReliableModelCount = len(out.ModelsUsed)
	if out.ReliableModelCount == 0 || total <= 0 {
		return nil, fmt.Errorf("%w: %d of %d groups predicted, none above R² %.2f",
			ErrNoReliableModels, len(out.Individual), groups.Count, e.threshold)
	}

	t := hours.FromHours(weighted / total)
	out.Ensemble = Summary{
		SafeHours:  t.SafeHours,
		RiskScore:  t.RiskScore,
		RiskLevel:  t.RiskLevel,
		Confidence: float64(out.ReliableModelCount) / float64(groups.Count),
	}
	factors := advice.ContributingFactors(in.engineered, 0)
	out.Recommendations = advice.Recommend(t.RiskLevel, 0, t.SafeHours, factors, e.locale)
	return out, nil
}
