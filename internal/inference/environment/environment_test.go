package environment

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValidateEmptyReadingUsesDefaults(t *testing.T) {
	r, missing := Validate(nil)
	if len(missing) != len(Fields) {
		t.Fatalf("missing=%d want %d", len(missing), len(Fields))
	}
	for _, f := range Fields {
		if r[f.Name] != f.Default {
			t.Fatalf("%s=%v want %v", f.Name, r[f.Name], f.Default)
		}
	}
	if r["hour"] != 12 || r["lat"] != 39.9334 {
		t.Fatalf("context defaults not applied: %v", r)
	}
	for _, name := range missing {
		if name == "hour" {
			t.Fatalf("context fields must not be reported missing")
		}
	}
}

func TestValidateCastsAndDefaultsGarbage(t *testing.T) {
	r, missing := Validate(map[string]any{
		"pm10":           json.Number("85"),
		"pm2_5":          "55.5",
		"ozone":          180,
		"uv_index":       "high",
		"temperature_2m": math.NaN(),
		"in_season":      true,
		"station_id":     7,
		"note":           "ignored",
	})
	if r["pm10"] != 85 || r["pm2_5"] != 55.5 || r["ozone"] != 180 || r["in_season"] != 1 {
		t.Fatalf("casts failed: %v", r)
	}
	if r["uv_index"] != 5.0 || r["temperature_2m"] != 22.0 {
		t.Fatalf("non-numeric values not defaulted: uv=%v temp=%v", r["uv_index"], r["temperature_2m"])
	}
	if r["station_id"] != 7 {
		t.Fatalf("extra numeric key dropped")
	}
	if _, ok := r["note"]; ok {
		t.Fatalf("non-numeric extra key carried")
	}
	seen := map[string]bool{}
	for _, m := range missing {
		seen[m] = true
	}
	if !seen["uv_index"] || !seen["temperature_2m"] {
		t.Fatalf("defaulted fields not reported missing: %v", missing)
	}
	if seen["pm10"] || seen["ozone"] {
		t.Fatalf("supplied fields reported missing: %v", missing)
	}
}

func TestEngineer(t *testing.T) {
	r, _ := ValidateFloats(map[string]float64{
		"pm10":                 40,
		"pm2_5":                20,
		"ozone":                100,
		"nitrogen_dioxide":     30,
		"upi_value":            100,
		"plant_upi_value":      50,
		"wind_speed_10m":       10,
		"temperature_2m":       24.5,
		"relative_humidity_2m": 50,
		"uv_index":             7.5,
		"hour":                 8,
		"day_of_week":          6,
	})
	e := Engineer(r)

	near := func(name string, want float64) {
		t.Helper()
		if math.Abs(e[name]-want) > 1e-9 {
			t.Fatalf("%s=%v want %v", name, e[name], want)
		}
	}
	near(AQICombined, 12+8+20+3)
	near(PollenRiskIndex, 50+15+0.1)
	near(ComfortIndex, 24.5-(0.55-0.275)*10-1.6)
	near(UVDangerLevel, 3)
	near(IsPeakPollenHour, 1)
	near(IsWeekend, 1)

	if _, ok := r[AQICombined]; ok {
		t.Fatalf("Engineer mutated its input")
	}
}

func TestUVDangerLevelCutPoints(t *testing.T) {
	cases := map[float64]float64{0: 0, 2: 0, 2.1: 1, 5: 1, 7: 2, 10: 3, 10.5: 4}
	for uv, want := range cases {
		if got := uvDangerLevel(uv); got != want {
			t.Fatalf("uv=%v level=%v want %v", uv, got, want)
		}
	}
}

func TestSectionsFlat(t *testing.T) {
	s := Sections{
		AirQuality: map[string]any{"pm25": 15.5, "o3": 125.7, "uvIndex": 6.8},
		Pollen:     map[string]any{"totalUpi": 85.6, "inSeasonCount": 7},
		Weather:    map[string]any{"temperature": 22.5, "windSpeed": 12.3},
	}
	r, _ := Validate(s.Flat())
	if r["pm2_5"] != 15.5 || r["ozone"] != 125.7 || r["uv_index"] != 6.8 {
		t.Fatalf("air quality mapping: %v", r)
	}
	if r["upi_value"] != 85.6 || r["plant_in_season"] != 7 || r["in_season"] != 1 {
		t.Fatalf("pollen mapping: %v", r)
	}
	if r["temperature_2m"] != 22.5 || r["wind_speed_10m"] != 12.3 {
		t.Fatalf("weather mapping: %v", r)
	}
}
