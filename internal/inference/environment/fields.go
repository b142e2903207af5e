// Package environment normalizes raw environmental readings (weather, air
// quality, UV, pollen) and derives the engineered features the group models
// were trained on.
package environment

// Field is a known environmental input and the value substituted when a
// reading omits it.
type Field struct {
	Name    string
	Default float64
}

// Fields lists every known environmental input in canonical order.
var Fields = []Field{
	// weather
	{"temperature_2m", 22.0},
	{"relative_humidity_2m", 55.0},
	{"precipitation", 0.0},
	{"snowfall", 0.0},
	{"rain", 0.0},
	{"cloud_cover", 30.0},
	{"surface_pressure", 1013.0},
	{"wind_speed_10m", 5.0},
	{"wind_direction_10m", 180.0},
	{"sunshine_duration", 8.0},

	// air quality
	{"pm10", 20.0},
	{"pm2_5", 12.0},
	{"carbon_dioxide", 400.0},
	{"carbon_monoxide", 1.0},
	{"nitrogen_dioxide", 20.0},
	{"sulphur_dioxide", 10.0},
	{"ozone", 100.0},
	{"aerosol_optical_depth", 0.2},
	{"methane", 1900.0},
	{"uv_index", 5.0},
	{"uv_index_clear_sky", 6.0},
	{"dust", 50.0},

	// pollen
	{"pollen_code", 0},
	{"in_season", 0},
	{"upi_value", 0},
	{"plant_code", 0},
	{"plant_in_season", 0},
	{"plant_upi_value", 0},
	{"pollen_diversity_index", 0},
	{"grass_pollen", 0},
	{"tree_pollen", 0},
	{"weed_pollen", 0},
}

// Context fields describe when and where a reading was taken. They default
// silently and are never reported missing.
var ContextFields = []Field{
	{"hour", 12},
	{"day_of_week", 2},
	{"lat", 39.9334},
	{"lon", 32.8597},
}

// Engineered feature names produced by Engineer.
const (
	AQICombined      = "aqi_combined"
	PollenRiskIndex  = "pollen_risk_index"
	ComfortIndex     = "comfort_index"
	UVDangerLevel    = "uv_danger_level"
	IsPeakPollenHour = "is_peak_pollen_hour"
	IsWeekend        = "is_weekend"
)

var engineered = []string{AQICombined, PollenRiskIndex, ComfortIndex, UVDangerLevel, IsPeakPollenHour, IsWeekend}

var (
	defaults = map[string]float64{}
	known    = map[string]bool{}
)

func init() {
	for _, f := range Fields {
		defaults[f.Name] = f.Default
		known[f.Name] = true
	}
	for _, f := range ContextFields {
		defaults[f.Name] = f.Default
		known[f.Name] = true
	}
	for _, name := range engineered {
		known[name] = true
	}
}

// Default returns the documented default for a known field.
func Default(name string) (float64, bool) {
	v, ok := defaults[name]
	return v, ok
}

// IsKnownFeature reports whether a model may reference name as an input:
// every validated field, context field and engineered feature.
func IsKnownFeature(name string) bool {
	return known[name]
}
