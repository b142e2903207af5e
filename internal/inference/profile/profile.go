// Package profile holds the typed personal inputs to a prediction: the
// clinical profile and the lifestyle parameters derived from it.
package profile

import "strings"

type Diagnosis string

const (
	DiagnosisNone         Diagnosis = "none"
	DiagnosisMildModerate Diagnosis = "mild_moderate_allergy"
	DiagnosisSevere       Diagnosis = "severe_allergy"
	DiagnosisAsthma       Diagnosis = "asthma"
)

const (
	DefaultAge = 30
	MaxAge     = 120
)

// ParseDiagnosis maps free text onto a known diagnosis. Unknown values are none.
func ParseDiagnosis(s string) Diagnosis {
	switch Diagnosis(strings.ToLower(strings.TrimSpace(s))) {
	case DiagnosisMildModerate:
		return DiagnosisMildModerate
	case DiagnosisSevere:
		return DiagnosisSevere
	case DiagnosisAsthma:
		return DiagnosisAsthma
	default:
		return DiagnosisNone
	}
}

type TreePollen struct {
	Birch bool `json:"birch"`
	Pine  bool `json:"pine"`
	Olive bool `json:"olive"`
}

type GrassPollen struct {
	Graminales bool `json:"graminales"`
}

type WeedPollen struct {
	Mugwort bool `json:"mugwort"`
	Ragweed bool `json:"ragweed"`
}

type Triggers struct {
	DustMites    bool `json:"dust_mites"`
	PetDander    bool `json:"pet_dander"`
	Mold         bool `json:"mold"`
	AirPollution bool `json:"air_pollution"`
	Smoke        bool `json:"smoke"`
}

// Active counts the triggers that are set.
func (t Triggers) Active() int {
	return countTrue(t.DustMites, t.PetDander, t.Mold, t.AirPollution, t.Smoke)
}

type Reactions struct {
	Anaphylaxis     bool `json:"anaphylaxis"`
	SevereAsthma    bool `json:"severe_asthma"`
	Hospitalization bool `json:"hospitalization"`
}

// Profile is a person's clinical background. Every field is optional; the
// zero value describes a healthy adult once normalized.
type Profile struct {
	// Age in years. Zero or negative means unknown.
	Age           int         `json:"age"`
	Diagnosis     Diagnosis   `json:"clinical_diagnosis"`
	FamilyHistory bool        `json:"family_allergy_history"`
	Medications   []string    `json:"medications,omitempty"`
	TreePollen    TreePollen  `json:"tree_pollen"`
	GrassPollen   GrassPollen `json:"grass_pollen"`
	WeedPollen    WeedPollen  `json:"weed_pollen"`
	FoodAllergies []string    `json:"food_allergies,omitempty"`
	Triggers      Triggers    `json:"environmental_triggers"`
	Reactions     Reactions   `json:"previous_reactions"`
}

// Normalize returns a copy with malformed values replaced by safe defaults.
func (p Profile) Normalize() Profile {
	out := p
	switch {
	case out.Age <= 0:
		out.Age = DefaultAge
	case out.Age > MaxAge:
		out.Age = MaxAge
	}
	out.Diagnosis = ParseDiagnosis(string(out.Diagnosis))
	out.Medications = append([]string(nil), p.Medications...)
	out.FoodAllergies = append([]string(nil), p.FoodAllergies...)
	return out
}

// PollenAllergies counts positive tree, grass and weed pollen flags.
func (p Profile) PollenAllergies() int {
	return countTrue(
		p.TreePollen.Birch, p.TreePollen.Pine, p.TreePollen.Olive,
		p.GrassPollen.Graminales,
		p.WeedPollen.Mugwort, p.WeedPollen.Ragweed,
	)
}

func (p Profile) IsChildOrElderly() bool {
	return p.Age < 12 || p.Age > 65
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
