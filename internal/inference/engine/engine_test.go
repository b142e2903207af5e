package engine

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/eduymaz/aller-mind/internal/inference/groups"
	"github.com/eduymaz/aller-mind/internal/inference/hours"
	"github.com/eduymaz/aller-mind/internal/inference/model"
	"github.com/eduymaz/aller-mind/internal/inference/model/sample"
	"github.com/eduymaz/aller-mind/internal/inference/profile"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

type fakeModels map[int]*model.Model

func (f fakeModels) Get(id int) (*model.Model, bool) {
	m, ok := f[id]
	return m, ok
}

// linearModels gives every requested group the same unscaled linear model:
// hours = 9 - 0.03*pm10 - 0.03*pm2_5 - 0.005*ozone - 0.1*uv_index.
func linearModels(t *testing.T, r2 float64, ids ...int) fakeModels {
	t.Helper()
	out := fakeModels{}
	for _, id := range ids {
		m, err := model.New(model.Metadata{
			GroupID:     id,
			Features:    []string{"pm10", "pm2_5", "ozone", "uv_index"},
			Performance: model.Performance{TestR2: r2},
		}, nil, &model.Linear{Coef: []float64{-0.03, -0.03, -0.005, -0.1}, Intercept: 9.0})
		if err != nil {
			t.Fatalf("model.New: %v", err)
		}
		out[id] = m
	}
	return out
}

func newEngine(models Models) *Engine {
	return New(models, logger.Nop(), Options{})
}

func intPtr(v int) *int { return &v }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

func TestIdealConditionsAreLowRisk(t *testing.T) {
	e := newEngine(linearModels(t, 0.97, groups.IDs()...))
	data := map[string]any{"temperature_2m": 23, "pm10": 15, "pm2_5": 8, "ozone": 80, "uv_index": 5}
	params := &profile.Params{Sensitivity: 2, OutdoorMinutes: intPtr(90), Profile: profile.Profile{Age: 30}}

	got, err := e.PredictEnsemble(context.Background(), data, params)
	if err != nil {
		t.Fatalf("PredictEnsemble: %v", err)
	}
	if got.Ensemble.RiskLevel != hours.Low {
		t.Fatalf("level=%s want Low", got.Ensemble.RiskLevel)
	}
	if got.Ensemble.SafeHours < 7 || got.Ensemble.SafeHours > hours.MaxHours {
		t.Fatalf("safe hours %v outside [7, 8.5]", got.Ensemble.SafeHours)
	}
	if !near(got.Ensemble.SafeHours, 8.34) {
		t.Fatalf("safe hours %v want ~8.34", got.Ensemble.SafeHours)
	}
	if got.Ensemble.Confidence != 1 || got.ReliableModelCount != 5 {
		t.Fatalf("confidence=%v reliable=%d", got.Ensemble.Confidence, got.ReliableModelCount)
	}

	g1, ok := got.Group(1)
	if !ok {
		t.Fatalf("group 1 missing")
	}
	if !near(g1.BaseSafeHours, 7.41) || !near(g1.PersonalMultiplier, 0.63) || g1.PersonalSafeHours != hours.MaxHours {
		t.Fatalf("group 1=%+v", g1)
	}
}

func TestSevereAsthmaElderlyIsHighRisk(t *testing.T) {
	e := newEngine(linearModels(t, 0.97, groups.IDs()...))
	data := map[string]any{"pm10": 85, "pm2_5": 55, "ozone": 180, "uv_index": 9}
	params := &profile.Params{
		Sensitivity:     5,
		MedicationCount: 2,
		Profile: profile.Profile{
			Age:       72,
			Diagnosis: profile.DiagnosisAsthma,
			Triggers:  profile.Triggers{AirPollution: true, Smoke: true},
			Reactions: profile.Reactions{SevereAsthma: true},
		},
	}

	got, err := e.PredictEnsemble(context.Background(), data, params)
	if err != nil {
		t.Fatalf("PredictEnsemble: %v", err)
	}
	if got.Ensemble.RiskLevel != hours.High {
		t.Fatalf("level=%s want High", got.Ensemble.RiskLevel)
	}
	if got.Ensemble.SafeHours > 2 {
		t.Fatalf("safe hours %v want <= 2", got.Ensemble.SafeHours)
	}
	for _, p := range got.Individual {
		if p.PersonalMultiplier < 0.3 || p.PersonalMultiplier > 5 {
			t.Fatalf("group %d multiplier %v out of bounds", p.GroupID, p.PersonalMultiplier)
		}
		if p.PersonalSafeHours < hours.MinHours || p.PersonalSafeHours > hours.MaxHours {
			t.Fatalf("group %d hours %v out of bounds", p.GroupID, p.PersonalSafeHours)
		}
	}
	if g5, _ := got.Group(5); g5.PersonalMultiplier != 5 || !near(g5.PersonalSafeHours, 0.6) {
		t.Fatalf("group 5=%+v", g5)
	}
	if len(got.Recommendations) == 0 {
		t.Fatalf("no recommendations")
	}
}

func TestNoReliableModels(t *testing.T) {
	e := newEngine(linearModels(t, 0.9, groups.IDs()...))
	_, err := e.PredictEnsemble(context.Background(), nil, nil)
	if !errors.Is(err, ErrNoReliableModels) {
		t.Fatalf("want ErrNoReliableModels, got %v", err)
	}

	// The cutoff is strict.
	e = newEngine(linearModels(t, DefaultReliabilityThreshold, groups.IDs()...))
	if _, err := e.PredictEnsemble(context.Background(), nil, nil); !errors.Is(err, ErrNoReliableModels) {
		t.Fatalf("R² equal to the threshold counted as reliable: %v", err)
	}

	e = newEngine(fakeModels{})
	if _, err := e.PredictEnsemble(context.Background(), nil, nil); !errors.Is(err, ErrNoReliableModels) {
		t.Fatalf("empty registry: %v", err)
	}
}

func TestConfigurableThreshold(t *testing.T) {
	e := New(linearModels(t, 0.9, groups.IDs()...), logger.Nop(), Options{ReliabilityThreshold: 0.85})
	got, err := e.PredictEnsemble(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("PredictEnsemble: %v", err)
	}
	if got.ReliableModelCount != 5 {
		t.Fatalf("reliable=%d", got.ReliableModelCount)
	}
}

func TestEnsembleExcludesUnavailableGroups(t *testing.T) {
	models := linearModels(t, 0.97, 1, 3, 5)
	for id, m := range linearModels(t, 0.90, 4) {
		models[id] = m
	}
	e := newEngine(models)

	got, err := e.PredictEnsemble(context.Background(), map[string]any{"pm10": 30}, nil)
	if err != nil {
		t.Fatalf("PredictEnsemble: %v", err)
	}
	if !reflect.DeepEqual(got.ModelsUsed, []int{1, 3, 5}) {
		t.Fatalf("models used=%v", got.ModelsUsed)
	}
	if got.Ensemble.Confidence != 0.6 {
		t.Fatalf("confidence=%v", got.Ensemble.Confidence)
	}
	if len(got.Individual) != 4 {
		t.Fatalf("individual=%d want 4 (unreliable groups are still reported)", len(got.Individual))
	}
	if len(got.Excluded) != 2 || got.Excluded[0].GroupID != 2 || got.Excluded[1].GroupID != 4 {
		t.Fatalf("excluded=%+v", got.Excluded)
	}
	if got.BestGroup != 1 || got.WorstGroup != 4 {
		t.Fatalf("best=%d worst=%d", got.BestGroup, got.WorstGroup)
	}
}

func TestPredictGroupErrors(t *testing.T) {
	e := newEngine(linearModels(t, 0.97, 1))
	for _, id := range []int{0, 6, -1} {
		if _, err := e.PredictGroup(context.Background(), nil, id, nil); !errors.Is(err, ErrInvalidGroup) {
			t.Fatalf("group %d: want ErrInvalidGroup, got %v", id, err)
		}
	}
	if _, err := e.PredictGroup(context.Background(), nil, 2, nil); !errors.Is(err, ErrGroupUnavailable) {
		t.Fatalf("want ErrGroupUnavailable, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.PredictGroup(ctx, nil, 1, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestPredictGroupReportsMissingFeatures(t *testing.T) {
	e := newEngine(linearModels(t, 0.97, 2))
	got, err := e.PredictGroup(context.Background(), map[string]any{"pm10": "42.5", "ozone": 90}, 2, nil)
	if err != nil {
		t.Fatalf("PredictGroup: %v", err)
	}
	if got.PersonalMultiplier != 1 {
		t.Fatalf("nil params multiplier=%v", got.PersonalMultiplier)
	}
	for _, name := range got.MissingFeatures {
		if name == "pm10" || name == "ozone" {
			t.Fatalf("%s reported missing", name)
		}
	}
	if len(got.MissingFeatures) != 30 {
		t.Fatalf("missing=%d want 30", len(got.MissingFeatures))
	}
	// pm2_5 and uv_index take their defaults of 12 and 5.
	want := 9 - 0.03*42.5 - 0.03*12 - 0.005*90 - 0.1*5
	if !near(got.BaseSafeHours, want) {
		t.Fatalf("base=%v want %v", got.BaseSafeHours, want)
	}
}

// tenthPM10 needs scaling and predicts a tenth of its first input.
type tenthPM10 struct{}

func (tenthPM10) Kind() string          { return "fake" }
func (tenthPM10) NumFeatures() int      { return 1 }
func (tenthPM10) RequiresScaling() bool { return true }
func (tenthPM10) Predict(x []float64) (float64, error) {
	return x[0] / 10, nil
}

func TestScalingFailureFallsBackToUnscaledInput(t *testing.T) {
	scaler := &model.Scaler{Kind: model.ScalerMinMax, Scale: []float64{math.MaxFloat64}, Offset: []float64{0}}
	m, err := model.New(model.Metadata{GroupID: 3, Features: []string{"pm10"}, Performance: model.Performance{TestR2: 0.99}}, scaler, tenthPM10{})
	if err != nil {
		t.Fatalf("model.New: %v", err)
	}
	e := newEngine(fakeModels{3: m})

	got, err := e.PredictGroup(context.Background(), map[string]any{"pm10": 40}, 3, nil)
	if err != nil {
		t.Fatalf("PredictGroup: %v", err)
	}
	if !got.ScalingFallback {
		t.Fatalf("scaling fallback not flagged")
	}
	if got.BaseSafeHours != 4 {
		t.Fatalf("base=%v want 4 from unscaled pm10", got.BaseSafeHours)
	}
}

func TestPredictionsAreDeterministic(t *testing.T) {
	models, err := sample.Models()
	if err != nil {
		t.Fatalf("sample.Models: %v", err)
	}
	fm := fakeModels{}
	for _, m := range models {
		fm[m.Meta.GroupID] = m
	}
	e := newEngine(fm)
	data := map[string]any{"pm10": 64, "pm2_5": 31, "ozone": 140, "uv_index": 7, "upi_value": 120}
	params := &profile.Params{Sensitivity: 4, Profile: profile.Profile{Age: 9, TreePollen: profile.TreePollen{Birch: true}}}

	first, err := e.PredictEnsemble(context.Background(), data, params)
	if err != nil {
		t.Fatalf("PredictEnsemble: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.PredictEnsemble(context.Background(), data, params)
		if err != nil {
			t.Fatalf("PredictEnsemble #%d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestSampleModelsRateIdealDayLowWithDefaultLifestyle(t *testing.T) {
	models, err := sample.Models()
	if err != nil {
		t.Fatalf("sample.Models: %v", err)
	}
	fm := fakeModels{}
	for _, m := range models {
		fm[m.Meta.GroupID] = m
	}
	e := newEngine(fm)
	data := map[string]any{"temperature_2m": 23, "pm10": 15, "pm2_5": 8, "ozone": 80, "uv_index": 5}

	for name, params := range map[string]*profile.Params{
		"healthy adult": {Profile: profile.Profile{Age: 30}},
		"anonymous":     nil,
	} {
		got, err := e.PredictEnsemble(context.Background(), data, params)
		if err != nil {
			t.Fatalf("%s: PredictEnsemble: %v", name, err)
		}
		if got.Ensemble.RiskLevel != hours.Low {
			t.Fatalf("%s: level=%s want Low", name, got.Ensemble.RiskLevel)
		}
		if got.Ensemble.SafeHours < 7 || got.Ensemble.SafeHours > hours.MaxHours {
			t.Fatalf("%s: safe hours %v outside [7, 8.5]", name, got.Ensemble.SafeHours)
		}
		if got.ReliableModelCount != groups.Count {
			t.Fatalf("%s: reliable=%d want %d", name, got.ReliableModelCount, groups.Count)
		}
	}
}
