// Package hours converts between safe outdoor hours and a normalized risk
// score, and labels risk scores.
//
// Safe hours live in [MinHours, MaxHours]. Risk is the linear inverse:
// MaxHours maps to risk 0 and MinHours to risk 1.
package hours

import "math"

const (
	MinHours = 0.5
	MaxHours = 8.5

	span = MaxHours - MinHours
)

// Level cut-points on the risk score.
const (
	LowBelow    = 0.3
	MediumBelow = 0.6
)

type Level string

const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

// Localized returns the label for locale ("en" or "tr"). Unknown locales get English.
func (l Level) Localized(locale string) string {
	if locale != "tr" {
		return string(l)
	}
	switch l {
	case Low:
		return "Düşük"
	case Medium:
		return "Orta"
	case High:
		return "Yüksek"
	}
	return string(l)
}

// Adjust divides the base prediction by the personal multiplier and clamps
// the result to the safe-hours range. A non-positive multiplier is treated
// as 1.
func Adjust(base, multiplier float64) float64 {
	if multiplier <= 0 || math.IsNaN(multiplier) {
		multiplier = 1
	}
	return Clamp(base / multiplier)
}

func Clamp(h float64) float64 {
	if math.IsNaN(h) {
		return MinHours
	}
	return math.Max(MinHours, math.Min(MaxHours, h))
}

// RiskFromHours maps safe hours onto [0, 1].
func RiskFromHours(h float64) float64 {
	return clamp01((MaxHours - Clamp(h)) / span)
}

// HoursFromRisk is the inverse of RiskFromHours.
func HoursFromRisk(risk float64) float64 {
	return MaxHours - span*clamp01(risk)
}

func LevelFor(risk float64) Level {
	switch {
	case risk < LowBelow:
		return Low
	case risk < MediumBelow:
		return Medium
	default:
		return High
	}
}

// Translation is the full output for one adjusted prediction.
type Translation struct {
	SafeHours float64 `json:"safe_hours"`
	RiskScore float64 `json:"risk_score"`
	RiskLevel Level   `json:"risk_level"`
}

// Translate adjusts base by multiplier and derives risk and level from the result.
func Translate(base, multiplier float64) Translation {
	return FromHours(Adjust(base, multiplier))
}

// FromHours labels an already adjusted safe-hours value.
func FromHours(h float64) Translation {
	h = Clamp(h)
	risk := RiskFromHours(h)
	return Translation{SafeHours: h, RiskScore: risk, RiskLevel: LevelFor(risk)}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return math.Max(0, math.Min(1, v))
}
