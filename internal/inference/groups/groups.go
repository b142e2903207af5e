// Package groups describes the five expert sensitivity groups.
package groups

import "fmt"

const (
	Pollen         = 1
	AirPollution   = 2
	UV             = 3
	Meteorological = 4
	Sensitive      = 5

	Count = 5
)

// Fallback is used when a requested group has no loaded model.
const Fallback = Meteorological

type Info struct {
	ID          int      `json:"group_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Algorithm   string   `json:"algorithm"`
	Primary     []string `json:"primary_features"`
}

var all = []Info{
	{
		ID:          Pollen,
		Name:        "Pollen Sensitivity",
		Description: "Tree, grass and weed pollen sensitivity",
		Algorithm:   "RandomForest",
		Primary:     []string{"pollen_code", "plant_code", "upi_value", "plant_upi_value", "wind_speed_10m", "wind_direction_10m", "relative_humidity_2m"},
	},
	{
		ID:          AirPollution,
		Name:        "Air Pollution Sensitivity",
		Description: "Particulate matter, NO2 and ozone sensitivity",
		Algorithm:   "GradientBoosting",
		Primary:     []string{"pm10", "pm2_5", "nitrogen_dioxide", "ozone", "carbon_monoxide", "sulphur_dioxide", "aerosol_optical_depth"},
	},
	{
		ID:          UV,
		Name:        "UV & Sun Sensitivity",
		Description: "UV index and sunlight exposure sensitivity",
		Algorithm:   "SVR",
		Primary:     []string{"uv_index", "uv_index_clear_sky", "sunshine_duration", "cloud_cover", "temperature_2m"},
	},
	{
		ID:          Meteorological,
		Name:        "Meteorological Sensitivity",
		Description: "Pressure, humidity and wind change sensitivity",
		Algorithm:   "ExtraTrees",
		Primary:     []string{"surface_pressure", "relative_humidity_2m", "wind_speed_10m", "precipitation", "rain", "cloud_cover"},
	},
	{
		ID:          Sensitive,
		Name:        "Sensitive Group (Child/Elderly)",
		Description: "High sensitivity to all environmental factors",
		Algorithm:   "NeuralNetwork",
		Primary:     []string{"pm10", "pm2_5", "uv_index", "temperature_2m", "ozone", "upi_value", "relative_humidity_2m", "wind_speed_10m"},
	},
}

// Common inputs appended to every group's primary features.
var Common = []string{
	"aqi_combined", "pollen_risk_index", "comfort_index", "uv_danger_level",
	"is_peak_pollen_hour", "is_weekend", "lat", "lon", "hour", "day_of_week",
}

func Valid(id int) bool { return id >= 1 && id <= Count }

// IDs returns 1..Count.
func IDs() []int {
	out := make([]int, Count)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func Get(id int) (Info, bool) {
	if !Valid(id) {
		return Info{}, false
	}
	return all[id-1], true
}

func All() []Info {
	return append([]Info(nil), all...)
}

// Features is the default ordered input list for a group model.
func Features(id int) []string {
	info, ok := Get(id)
	if !ok {
		return nil
	}
	out := append([]string(nil), info.Primary...)
	return append(out, Common...)
}

func Name(id int) string {
	if info, ok := Get(id); ok {
		return info.Name
	}
	return fmt.Sprintf("Group %d", id)
}
