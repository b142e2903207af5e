package advice

import (
	"reflect"
	"strings"
	"testing"

	"github.com/eduymaz/aller-mind/internal/inference/environment"
	"github.com/eduymaz/aller-mind/internal/inference/hours"
)

func reading(t *testing.T, raw map[string]float64) environment.Reading {
	t.Helper()
	r, _ := environment.ValidateFloats(raw)
	return r
}

func TestContributingFactors(t *testing.T) {
	r := reading(t, map[string]float64{"pm10": 85, "pm2_5": 20, "ozone": 180, "upi_value": 150, "uv_index": 8})
	f := ContributingFactors(r, 5)
	want := Factors{HighPM10: 85, HighOzone: 180, HighPollen: 150, HighUV: 8, HighRiskGroup: 5}
	if !reflect.DeepEqual(f, want) {
		t.Fatalf("factors=%v want %v", f, want)
	}

	clean := ContributingFactors(reading(t, nil), 3)
	if len(clean) != 0 {
		t.Fatalf("default reading produced factors %v", clean)
	}
}

func TestEnvironmentalRisks(t *testing.T) {
	cases := []struct {
		raw  map[string]float64
		want Risks
	}{
		{nil, Risks{SeverityLow, SeverityLow, SeverityLow}},
		{map[string]float64{"pm2_5": 30, "upi_value": 150, "temperature_2m": 32}, Risks{SeverityMedium, SeverityMedium, SeverityMedium}},
		{map[string]float64{"ozone": 181, "upi_value": 201, "wind_speed_10m": 26}, Risks{SeverityHigh, SeverityHigh, SeverityHigh}},
		{map[string]float64{"temperature_2m": -2}, Risks{SeverityLow, SeverityLow, SeverityHigh}},
	}
	for i, tc := range cases {
		if got := EnvironmentalRisks(reading(t, tc.raw)); got != tc.want {
			t.Fatalf("case %d: got %+v want %+v", i, got, tc.want)
		}
	}
}

func TestRecommendOrderAndLocale(t *testing.T) {
	f := Factors{HighPM25: 60, HighUV: 9}
	got := Recommend(hours.High, 1, 1.2, f, "en")
	want := []string{
		catalog["en"][stayIndoors],
		catalog["en"][maskIfOutside],
		catalog["en"][windowsClosed],
		catalog["en"][carryMedication],
		catalog["en"][particulateMask],
		catalog["en"][sunProtection],
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	tr := Recommend(hours.Medium, 5, 3.04, nil, "tr")
	if len(tr) != 3 || tr[0] != "Dışarıda en fazla 3.0 saat kalabilirsiniz" || tr[2] != catalog["tr"][sensitiveGroup] {
		t.Fatalf("tr=%q", tr)
	}

	low := Recommend(hours.Low, 3, 8, nil, "de")
	if len(low) != 1 || !strings.Contains(low[0], "safe day") {
		t.Fatalf("low=%q", low)
	}
}

func TestRecommendIsDeterministic(t *testing.T) {
	f := Factors{HighPM10: 90, HighOzone: 150, HighPollen: 120}
	a := Recommend(hours.Medium, 2, 4.5, f, "en")
	for i := 0; i < 20; i++ {
		if b := Recommend(hours.Medium, 2, 4.5, f, "en"); !reflect.DeepEqual(a, b) {
			t.Fatalf("run %d differs: %q vs %q", i, a, b)
		}
	}
}
