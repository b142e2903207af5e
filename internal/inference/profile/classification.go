package profile

import (
	"sort"
	"strings"
)

// Classification is the user grouping produced by the upstream allergy
// classification service.
type Classification struct {
	GroupID          int     `json:"groupId"`
	GroupName        string  `json:"groupName"`
	GroupDescription string  `json:"groupDescription,omitempty"`
	AssignmentReason string  `json:"assignmentReason,omitempty"`
	ModelWeight      float64 `json:"modelWeight,omitempty"`

	Age                   int             `json:"age"`
	Gender                string          `json:"gender,omitempty"`
	ClinicalDiagnosis     string          `json:"clinicalDiagnosis"`
	CurrentMedications    []string        `json:"currentMedications"`
	FamilyAllergyHistory  bool            `json:"familyAllergyHistory"`
	TreePollenAllergies   map[string]bool `json:"treePollenAllergies,omitempty"`
	GrassPollenAllergies  map[string]bool `json:"grassPollenAllergies,omitempty"`
	WeedPollenAllergies   map[string]bool `json:"weedPollenAllergies,omitempty"`
	FoodAllergies         map[string]bool `json:"foodAllergies,omitempty"`
	PreviousReactions     map[string]bool `json:"previousAllergicReactions,omitempty"`
	EnvironmentalTriggers map[string]bool `json:"environmentalTriggers,omitempty"`

	// SensitivityFactors uses "<trigger>_sensitive" or "<trigger>_sensitivity"
	// keys. It is consulted only for triggers absent from EnvironmentalTriggers.
	SensitivityFactors map[string]bool `json:"environmentalSensitivityFactors,omitempty"`
}

// FromClassification derives weight-calculator params from a classification.
// Sensitivity grows with age extremes, diagnosis severity and medication load.
func FromClassification(c Classification) Params {
	age := c.Age
	if age <= 0 {
		age = DefaultAge
	}
	ageFactor := 1.0
	switch {
	case age < 18:
		ageFactor = 1.2
	case age > 65:
		ageFactor = 1.1
	}

	diagnosis := ParseDiagnosis(c.ClinicalDiagnosis)
	diagnosisFactor := 1.0
	switch diagnosis {
	case DiagnosisSevere:
		diagnosisFactor += 0.4
	case DiagnosisAsthma:
		diagnosisFactor += 0.3
	case DiagnosisMildModerate:
		diagnosisFactor += 0.2
	}

	meds := len(c.CurrentMedications)
	medicationFactor := 1.0 + float64(meds)*0.05
	raw := 0.5 * ageFactor * diagnosisFactor * medicationFactor

	return Params{
		Sensitivity:     clampInt(int(raw*5), 1, 5),
		MedicationCount: clampInt(meds, 0, MaxMedicationCount),
		Profile:         c.Profile(),
	}
}

// Profile builds the clinical profile carried by the classification.
func (c Classification) Profile() Profile {
	p := Profile{
		Age:           c.Age,
		Diagnosis:     ParseDiagnosis(c.ClinicalDiagnosis),
		FamilyHistory: c.FamilyAllergyHistory,
		Medications:   append([]string(nil), c.CurrentMedications...),
		TreePollen: TreePollen{
			Birch: c.TreePollenAllergies["birch"],
			Pine:  c.TreePollenAllergies["pine"],
			Olive: c.TreePollenAllergies["olive"],
		},
		GrassPollen: GrassPollen{Graminales: c.GrassPollenAllergies["graminales"]},
		WeedPollen: WeedPollen{
			Mugwort: c.WeedPollenAllergies["mugwort"],
			Ragweed: c.WeedPollenAllergies["ragweed"],
		},
		Reactions: Reactions{
			Anaphylaxis:     c.PreviousReactions["anaphylaxis"],
			SevereAsthma:    c.PreviousReactions["severe_asthma"],
			Hospitalization: c.PreviousReactions["hospitalization"],
		},
		Triggers: Triggers{
			DustMites:    c.trigger("dust_mites", "dust_mite"),
			PetDander:    c.trigger("pet_dander"),
			Mold:         c.trigger("mold"),
			AirPollution: c.trigger("air_pollution"),
			Smoke:        c.trigger("smoke"),
		},
	}
	for food, allergic := range c.FoodAllergies {
		if allergic {
			p.FoodAllergies = append(p.FoodAllergies, strings.ToLower(food))
		}
	}
	sort.Strings(p.FoodAllergies)
	return p.Normalize()
}

func (c Classification) trigger(names ...string) bool {
	for _, n := range names {
		if v, ok := c.EnvironmentalTriggers[n]; ok {
			return v
		}
	}
	for _, n := range names {
		if c.SensitivityFactors[n+"_sensitive"] || c.SensitivityFactors[n+"_sensitivity"] {
			return true
		}
	}
	return false
}
