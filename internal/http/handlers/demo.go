package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/eduymaz/aller-mind/internal/http/response"
	"github.com/eduymaz/aller-mind/internal/inference/engine"
	"github.com/eduymaz/aller-mind/internal/inference/profile"
	"github.com/eduymaz/aller-mind/internal/platform/apierr"
)

type demoScenario struct {
	Name  string
	Input PredictRequest
}

func intPtr(v int) *int { return &v }

// demoScenarios are a clean summer day for a healthy adult and a polluted,
// hot day for an elderly asthmatic.
var demoScenarios = []demoScenario{
	{
		Name: "ideal_conditions",
		Input: PredictRequest{
			EnvironmentalData: map[string]any{
				"temperature_2m": 25.0, "relative_humidity_2m": 60.0, "precipitation": 0.0,
				"wind_speed_10m": 8.0, "pm10": 20.0, "pm2_5": 12.0, "ozone": 90.0,
				"nitrogen_dioxide": 18.0, "uv_index": 6.0, "surface_pressure": 1015.0,
			},
			PersonalParams: &profile.Params{
				Sensitivity:    3,
				OutdoorMinutes: intPtr(120),
				Profile:        profile.Profile{Age: 30, Diagnosis: profile.DiagnosisNone},
			},
		},
	},
	{
		Name: "high_pollution",
		Input: PredictRequest{
			EnvironmentalData: map[string]any{
				"temperature_2m": 32.0, "relative_humidity_2m": 45.0, "precipitation": 0.0,
				"wind_speed_10m": 3.0, "pm10": 85.0, "pm2_5": 55.0, "ozone": 180.0,
				"nitrogen_dioxide": 45.0, "uv_index": 9.0, "surface_pressure": 1008.0,
			},
			PersonalParams: &profile.Params{
				Sensitivity:    5,
				OutdoorMinutes: intPtr(30),
				Profile: profile.Profile{
					Age:       72,
					Diagnosis: profile.DiagnosisAsthma,
					Triggers:  profile.Triggers{AirPollution: true, Smoke: true},
				},
			},
		},
	},
}

type demoResult struct {
	Input      PredictRequest  `json:"input"`
	Prediction *engine.Summary `json:"prediction,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Demo handles GET /v1/predict/demo.
func (h *PredictHandler) Demo(c *gin.Context) {
	ctx, cancel := withTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	out := make(map[string]demoResult, len(demoScenarios))
	for _, s := range demoScenarios {
		res := demoResult{Input: s.Input}
		pred, err := h.engine.PredictEnsemble(ctx, s.Input.EnvironmentalData, s.Input.PersonalParams)
		if err != nil {
			if ctx.Err() != nil {
				response.RespondError(c, engineError(err))
				return
			}
			res.Error = apierr.From(engineError(err)).Code
		} else {
			summary := pred.Ensemble
			res.Prediction = &summary
			res.Summary = fmt.Sprintf("%.1f hours, %s risk", summary.SafeHours, summary.RiskLevel)
		}
		out[s.Name] = res
	}
	response.RespondOK(c, gin.H{"demo_results": out})
}
