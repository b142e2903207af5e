package profile

const (
	DefaultScore          = 3
	DefaultOutdoorMinutes = 120
	MaxMedicationCount    = 5
	MaxOutdoorMinutes     = 24 * 60
)

// Params are the personal inputs of the weight calculator. Scores use a
// 1..5 scale where zero means "not provided".
type Params struct {
	Sensitivity     int `json:"sensitivity"`
	MedicationCount int `json:"medication_count"`
	// OutdoorMinutes is the planned time outside today. Nil means unknown.
	OutdoorMinutes *int    `json:"outdoor_minutes,omitempty"`
	Stress         int     `json:"stress_level"`
	Sleep          int     `json:"sleep_quality"`
	Nutrition      int     `json:"nutrition_quality"`
	Profile        Profile `json:"profile"`
}

// Normalized is Params after defaults and clamping. Every field is in range.
type Normalized struct {
	Sensitivity     int
	MedicationCount int
	OutdoorMinutes  int
	Stress          int
	Sleep           int
	Nutrition       int
	Profile         Profile
}

func (p Params) Normalize() Normalized {
	outdoor := DefaultOutdoorMinutes
	if p.OutdoorMinutes != nil {
		outdoor = clampInt(*p.OutdoorMinutes, 0, MaxOutdoorMinutes)
	}
	return Normalized{
		Sensitivity:     score(p.Sensitivity),
		MedicationCount: clampInt(p.MedicationCount, 0, MaxMedicationCount),
		OutdoorMinutes:  outdoor,
		Stress:          score(p.Stress),
		Sleep:           score(p.Sleep),
		Nutrition:       score(p.Nutrition),
		Profile:         p.Profile.Normalize(),
	}
}

func score(v int) int {
	if v == 0 {
		return DefaultScore
	}
	return clampInt(v, 1, 5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
