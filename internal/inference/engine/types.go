package engine

import (
	"github.com/eduymaz/aller-mind/internal/inference/hours"
	"github.com/eduymaz/aller-mind/internal/inference/model"
	"github.com/eduymaz/aller-mind/internal/inference/weight"
)

// GroupPrediction is one group model's result after personal weighting.
type GroupPrediction struct {
	GroupID            int               `json:"group_id"`
	GroupName          string            `json:"group_name"`
	Algorithm          string            `json:"algorithm"`
	BaseSafeHours      float64           `json:"base_safe_hours"`
	PersonalMultiplier float64           `json:"personal_multiplier"`
	PersonalSafeHours  float64           `json:"personal_safe_hours"`
	RiskScore          float64           `json:"risk_score"`
	RiskLevel          hours.Level       `json:"risk_level"`
	MissingFeatures    []string          `json:"missing_features"`
	Performance        model.Performance `json:"performance"`
	// ScalingFallback is set when the scaler produced a non-finite value and
	// the model ran on unscaled input.
	ScalingFallback bool             `json:"scaling_fallback"`
	Weights         weight.Breakdown `json:"weights"`
}

type Summary struct {
	SafeHours  float64     `json:"safe_hours"`
	RiskScore  float64     `json:"risk_score"`
	RiskLevel  hours.Level `json:"risk_level"`
	Confidence float64     `json:"confidence"`
}

// Exclusion names a group left out of the ensemble.
type Exclusion struct {
	GroupID int    `json:"group_id"`
	Reason  string `json:"reason"`
}

type EnsemblePrediction struct {
	Ensemble Summary `json:"ensemble"`
	// Individual holds every group that produced a prediction, reliable or
	// not, ordered by group id.
	Individual         []GroupPrediction `json:"individual_predictions"`
	ReliableModelCount int               `json:"reliable_model_count"`
	ModelsUsed         []int             `json:"models_used"`
	BestGroup          int               `json:"best_group,omitempty"`
	WorstGroup         int               `json:"worst_group,omitempty"`
	Excluded           []Exclusion       `json:"excluded,omitempty"`
	MissingFeatures    []string          `json:"missing_features"`
	Recommendations    []string          `json:"recommendations"`
}

// Group returns the individual prediction for groupID.
func (p *EnsemblePrediction) Group(groupID int) (GroupPrediction, bool) {
	for _, g := range p.Individual {
		if g.GroupID == groupID {
			return g, true
		}
	}
	return GroupPrediction{}, false
}
