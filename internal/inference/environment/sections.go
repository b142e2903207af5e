package environment

// Sections is the nested reading shape used by the mobile clients: separate
// air quality, pollen and weather objects with camelCase keys.
type Sections struct {
	AirQuality map[string]any `json:"airQuality"`
	Pollen     map[string]any `json:"pollen"`
	Weather    map[string]any `json:"weather"`
}

var airQualityKeys = map[string]string{
	"pm10":                "pm10",
	"pm25":                "pm2_5",
	"o3":                  "ozone",
	"no2":                 "nitrogen_dioxide",
	"so2":                 "sulphur_dioxide",
	"co":                  "carbon_monoxide",
	"co2":                 "carbon_dioxide",
	"dust":                "dust",
	"methane":             "methane",
	"uvIndex":             "uv_index",
	"uvIndexClearSky":     "uv_index_clear_sky",
	"aerosolOpticalDepth": "aerosol_optical_depth",
}

var weatherKeys = map[string]string{
	"temperature":      "temperature_2m",
	"humidity":         "relative_humidity_2m",
	"precipitation":    "precipitation",
	"rain":             "rain",
	"snowfall":         "snowfall",
	"windSpeed":        "wind_speed_10m",
	"windDirection":    "wind_direction_10m",
	"pressure":         "surface_pressure",
	"cloudCover":       "cloud_cover",
	"sunshineDuration": "sunshine_duration",
}

var pollenKeys = map[string]string{
	"totalUpi":       "upi_value",
	"plantUpi":       "plant_upi_value",
	"pollenCode":     "pollen_code",
	"plantCode":      "plant_code",
	"grassPollen":    "grass_pollen",
	"treePollen":     "tree_pollen",
	"weedPollen":     "weed_pollen",
	"diversityIndex": "pollen_diversity_index",
}

// Flat maps the nested sections onto flat reading field names. The result
// is meant to be passed through Validate.
func (s Sections) Flat() map[string]any {
	out := map[string]any{}
	copyKeys(out, s.AirQuality, airQualityKeys)
	copyKeys(out, s.Weather, weatherKeys)
	copyKeys(out, s.Pollen, pollenKeys)

	if v, ok := toFloat(s.Pollen["inSeasonCount"]); ok {
		out["plant_in_season"] = v
		out["in_season"] = boolFloat(v > 0)
	}
	return out
}

func copyKeys(dst map[string]any, src map[string]any, keys map[string]string) {
	for from, to := range keys {
		if v, ok := src[from]; ok {
			dst[to] = v
		}
	}
}
