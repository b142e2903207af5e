package environment

// Engineer returns a copy of r with the derived features every group model
// consumes. Context fields missing from r take their defaults.
func Engineer(r Reading) Reading {
	out := r.Clone()
	for _, f := range ContextFields {
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = f.Default
		}
	}

	pm10 := r.Get("pm10")
	pm25 := r.Get("pm2_5")
	ozone := r.Get("ozone")
	no2 := r.Get("nitrogen_dioxide")
	out[AQICombined] = pm10*0.3 + pm25*0.4 + ozone*0.2 + no2*0.1

	wind := r.Get("wind_speed_10m")
	out[PollenRiskIndex] = r.Get("upi_value")*0.5 + r.Get("plant_upi_value")*0.3 + (wind/20)*0.2

	temp := r.Get("temperature_2m")
	humidity := r.Get("relative_humidity_2m")
	out[ComfortIndex] = temp - (0.55-0.0055*humidity)*(temp-14.5) - wind*0.16

	out[UVDangerLevel] = uvDangerLevel(r.Get("uv_index"))

	hour := out["hour"]
	out[IsPeakPollenHour] = boolFloat(hour >= 6 && hour <= 10)
	out[IsWeekend] = boolFloat(out["day_of_week"] >= 5)
	return out
}

func uvDangerLevel(uv float64) float64 {
	switch {
	case uv <= 2:
		return 0
	case uv <= 5:
		return 1
	case uv <= 7:
		return 2
	case uv <= 10:
		return 3
	default:
		return 4
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
