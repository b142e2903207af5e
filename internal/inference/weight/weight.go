// Package weight computes the personal risk multiplier applied to a group
// model's base safe-hours prediction.
package weight

import (
	"github.com/eduymaz/aller-mind/internal/inference/groups"
	"github.com/eduymaz/aller-mind/internal/inference/profile"
)

const (
	MinMultiplier = 0.3
	MaxMultiplier = 5.0
)

// Breakdown is the three factors behind a multiplier.
type Breakdown struct {
	RiskGroup  float64 `json:"risk_group"`
	Relevance  float64 `json:"allergy_relevance"`
	Lifestyle  float64 `json:"lifestyle"`
	Multiplier float64 `json:"multiplier"`
}

// Multiplier returns the clamped personal multiplier for groupID.
// Nil params mean no personalization and yield exactly 1.
func Multiplier(params *profile.Params, groupID int) float64 {
	return Compute(params, groupID).Multiplier
}

func Compute(params *profile.Params, groupID int) Breakdown {
	if params == nil {
		return Breakdown{RiskGroup: 1, Relevance: 1, Lifestyle: 1, Multiplier: 1}
	}
	n := params.Normalize()
	b := Breakdown{
		RiskGroup: riskGroupFactor(n.Profile),
		Relevance: relevanceFactor(n.Profile, groupID),
		Lifestyle: lifestyleFactor(n),
	}
	b.Multiplier = clamp(b.RiskGroup*b.Relevance*b.Lifestyle, MinMultiplier, MaxMultiplier)
	return b
}

// riskGroupFactor places the person in a clinical risk tier. First match wins.
func riskGroupFactor(p profile.Profile) float64 {
	switch {
	case p.Diagnosis == profile.DiagnosisSevere || p.Reactions.Anaphylaxis:
		return 3.5
	case p.Diagnosis == profile.DiagnosisAsthma || p.Reactions.SevereAsthma:
		return 3.0
	case p.Diagnosis == profile.DiagnosisMildModerate || p.Reactions.Hospitalization:
		return 2.2
	case p.FamilyHistory && p.Diagnosis == profile.DiagnosisNone:
		return 1.8
	case p.IsChildOrElderly():
		return 2.5
	default:
		return 1.0
	}
}

// relevanceFactor scales by how much the group's environmental driver
// matters to this person.
func relevanceFactor(p profile.Profile, groupID int) float64 {
	switch groupID {
	case groups.Pollen:
		switch n := p.PollenAllergies(); {
		case n >= 4:
			return 2.8
		case n >= 2:
			return 2.0
		case n >= 1:
			return 1.5
		default:
			return 0.7
		}
	case groups.AirPollution:
		switch {
		case p.Triggers.AirPollution && p.Triggers.Smoke:
			return 2.5
		case p.Triggers.AirPollution || p.Triggers.Smoke:
			return 1.8
		default:
			return 0.8
		}
	case groups.UV:
		switch {
		case p.Age < 5 || p.Age > 70:
			return 2.0
		case p.Diagnosis == profile.DiagnosisSevere || p.Diagnosis == profile.DiagnosisAsthma:
			return 1.6
		default:
			return 1.0
		}
	case groups.Meteorological:
		switch p.Diagnosis {
		case profile.DiagnosisAsthma:
			return 2.2
		case profile.DiagnosisSevere, profile.DiagnosisMildModerate:
			return 1.5
		default:
			return 1.0
		}
	case groups.Sensitive:
		return sensitiveGroupFactor(p)
	default:
		return 1.0
	}
}

func sensitiveGroupFactor(p profile.Profile) float64 {
	factors := 0
	if p.IsChildOrElderly() {
		factors += 2
	}
	switch p.Diagnosis {
	case profile.DiagnosisSevere, profile.DiagnosisAsthma:
		factors += 2
	case profile.DiagnosisMildModerate:
		factors++
	}
	switch n := p.Triggers.Active(); {
	case n >= 3:
		factors += 2
	case n >= 1:
		factors++
	}

	switch {
	case factors >= 5:
		return 3.0
	case factors >= 3:
		return 2.0
	case factors >= 1:
		return 1.5
	default:
		return 1.0
	}
}

// lifestyleFactor is a running product over the daily lifestyle inputs.
// It is non-decreasing in sensitivity.
func lifestyleFactor(n profile.Normalized) float64 {
	m := 1.0

	switch {
	case n.Sensitivity >= 4:
		m *= 1.4
	case n.Sensitivity >= 3:
		m *= 1.2
	default:
		m *= 0.9
	}

	switch {
	case n.OutdoorMinutes > 240:
		m *= 1.3
	case n.OutdoorMinutes > 120:
		m *= 1.1
	case n.OutdoorMinutes < 60:
		m *= 0.95
	}

	if n.MedicationCount > 0 {
		m *= 0.85
	}

	switch {
	case n.Stress >= 4:
		m *= 1.2
	case n.Stress <= 2:
		m *= 0.95
	}

	switch {
	case n.Sleep <= 2:
		m *= 1.3
	case n.Sleep >= 4:
		m *= 0.9
	}

	switch {
	case n.Nutrition <= 2:
		m *= 1.2
	case n.Nutrition >= 4:
		m *= 0.95
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
