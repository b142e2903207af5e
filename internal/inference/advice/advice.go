// Package advice turns a risk assessment into contributing factors,
// per-domain environmental risk labels and user-facing recommendations.
package advice

import (
	"github.com/eduymaz/aller-mind/internal/inference/environment"
	"github.com/eduymaz/aller-mind/internal/inference/groups"
)

// Factor keys reported by ContributingFactors.
const (
	HighPM10      = "high_pm10"
	HighPM25      = "high_pm25"
	HighOzone     = "high_ozone"
	HighPollen    = "high_pollen"
	HighUV        = "high_uv"
	HighRiskGroup = "high_risk_group"
)

// Thresholds above which a reading contributes to risk.
const (
	PM10Threshold   = 50.0
	PM25Threshold   = 25.0
	OzoneThreshold  = 120.0
	PollenThreshold = 100.0
	UVThreshold     = 8.0
)

// Factors maps a factor key to the value that triggered it. HighRiskGroup
// carries the group id.
type Factors map[string]float64

func (f Factors) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// ContributingFactors lists the environmental readings over their
// thresholds, plus the user's group when it is a high-risk one.
func ContributingFactors(r environment.Reading, groupID int) Factors {
	f := Factors{}
	if v := r.Get("pm10"); v > PM10Threshold {
		f[HighPM10] = v
	}
	if v := r.Get("pm2_5"); v > PM25Threshold {
		f[HighPM25] = v
	}
	if v := r.Get("ozone"); v > OzoneThreshold {
		f[HighOzone] = v
	}
	if v := r.Get("upi_value"); v > PollenThreshold {
		f[HighPollen] = v
	}
	if v := r.Get("uv_index"); v >= UVThreshold {
		f[HighUV] = v
	}
	if groupID == groups.Pollen || groupID == groups.Sensitive {
		f[HighRiskGroup] = float64(groupID)
	}
	return f
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Risks labels the air quality, pollen and weather conditions separately.
type Risks struct {
	AirQuality Severity `json:"air_quality_risk"`
	Pollen     Severity `json:"pollen_risk"`
	Weather    Severity `json:"weather_risk"`
}

func EnvironmentalRisks(r environment.Reading) Risks {
	out := Risks{AirQuality: SeverityLow, Pollen: SeverityLow, Weather: SeverityLow}

	pm10, pm25, ozone := r.Get("pm10"), r.Get("pm2_5"), r.Get("ozone")
	switch {
	case pm10 > 100 || pm25 > 50 || ozone > 180:
		out.AirQuality = SeverityHigh
	case pm10 > PM10Threshold || pm25 > PM25Threshold || ozone > OzoneThreshold:
		out.AirQuality = SeverityMedium
	}

	switch upi := r.Get("upi_value"); {
	case upi > 200:
		out.Pollen = SeverityHigh
	case upi > PollenThreshold:
		out.Pollen = SeverityMedium
	}

	temp, wind := r.Get("temperature_2m"), r.Get("wind_speed_10m")
	switch {
	case temp > 35 || temp < 0 || wind > 25:
		out.Weather = SeverityHigh
	case temp > 30 || temp < 5 || wind > 15:
		out.Weather = SeverityMedium
	}
	return out
}
