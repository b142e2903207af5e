package profile

import (
	"reflect"
	"testing"
)

func TestParamsNormalizeClampsMalformedValues(t *testing.T) {
	outdoor := -40
	n := Params{
		Sensitivity:     9,
		MedicationCount: -2,
		OutdoorMinutes:  &outdoor,
		Stress:          -1,
		Profile:         Profile{Age: -5, Diagnosis: "Unknown Thing"},
	}.Normalize()

	if n.Sensitivity != 5 {
		t.Fatalf("sensitivity=%d want 5", n.Sensitivity)
	}
	if n.MedicationCount != 0 {
		t.Fatalf("medication=%d want 0", n.MedicationCount)
	}
	if n.OutdoorMinutes != 0 {
		t.Fatalf("outdoor=%d want 0", n.OutdoorMinutes)
	}
	if n.Stress != 1 || n.Sleep != DefaultScore || n.Nutrition != DefaultScore {
		t.Fatalf("scores=%d/%d/%d", n.Stress, n.Sleep, n.Nutrition)
	}
	if n.Profile.Age != DefaultAge || n.Profile.Diagnosis != DiagnosisNone {
		t.Fatalf("profile=%+v", n.Profile)
	}
}

func TestParamsNormalizeDefaults(t *testing.T) {
	n := Params{}.Normalize()
	if n.Sensitivity != 3 || n.OutdoorMinutes != DefaultOutdoorMinutes {
		t.Fatalf("defaults=%+v", n)
	}
	if got := (Profile{Age: 400}).Normalize().Age; got != MaxAge {
		t.Fatalf("age=%d want %d", got, MaxAge)
	}
}

func TestFromClassification(t *testing.T) {
	p := FromClassification(Classification{
		GroupID:              2,
		Age:                  28,
		ClinicalDiagnosis:    "mild_moderate_allergy",
		CurrentMedications:   []string{"antihistamine", "nasal_spray"},
		GrassPollenAllergies: map[string]bool{"graminales": true},
		TreePollenAllergies:  map[string]bool{"birch": true, "pine": false},
		EnvironmentalTriggers: map[string]bool{
			"air_pollution": true,
			"smoke":         true,
		},
		SensitivityFactors: map[string]bool{"mold_sensitivity": true},
		FoodAllergies:      map[string]bool{"Apple": true, "nuts": false},
	})

	// 0.5 * 1.0 * 1.2 * 1.1 * 5 = 3.3
	if p.Sensitivity != 3 {
		t.Fatalf("sensitivity=%d want 3", p.Sensitivity)
	}
	if p.MedicationCount != 2 {
		t.Fatalf("medication=%d want 2", p.MedicationCount)
	}
	if got := p.Profile.PollenAllergies(); got != 2 {
		t.Fatalf("pollen allergies=%d want 2", got)
	}
	tr := p.Profile.Triggers
	if !tr.AirPollution || !tr.Smoke || !tr.Mold || tr.PetDander {
		t.Fatalf("triggers=%+v", tr)
	}
	if len(p.Profile.FoodAllergies) != 1 || p.Profile.FoodAllergies[0] != "apple" {
		t.Fatalf("food=%v", p.Profile.FoodAllergies)
	}
}

func TestFromClassificationSensitivityBounds(t *testing.T) {
	low := FromClassification(Classification{Age: 30})
	if low.Sensitivity != 2 {
		t.Fatalf("healthy adult sensitivity=%d want 2", low.Sensitivity)
	}
	meds := make([]string, 12)
	high := FromClassification(Classification{Age: 8, ClinicalDiagnosis: "severe_allergy", CurrentMedications: meds})
	if high.Sensitivity != 5 || high.MedicationCount != MaxMedicationCount {
		t.Fatalf("high=%+v", high)
	}
}

func TestFromClassificationIsDeterministic(t *testing.T) {
	c := Classification{
		GroupID:           1,
		Age:               34,
		ClinicalDiagnosis: "mild",
		FoodAllergies: map[string]bool{
			"Peanut": true, "milk": true, "egg": true, "shellfish": true,
			"soy": true, "wheat": true, "fish": false,
		},
	}
	first := FromClassification(c)
	want := []string{"egg", "milk", "peanut", "shellfish", "soy", "wheat"}
	if !reflect.DeepEqual(first.Profile.FoodAllergies, want) {
		t.Fatalf("food allergies=%v want %v", first.Profile.FoodAllergies, want)
	}
	for i := 0; i < 50; i++ {
		if got := FromClassification(c); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d differs: %+v vs %+v", i, got.Profile.FoodAllergies, first.Profile.FoodAllergies)
		}
	}
}
