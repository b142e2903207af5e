package environment

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Reading is a normalized environmental reading keyed by field name.
type Reading map[string]float64

// Get returns the value for name, falling back to the field default and then 0.
func (r Reading) Get(name string) float64 {
	if v, ok := r[name]; ok {
		return v
	}
	if v, ok := defaults[name]; ok {
		return v
	}
	return 0
}

// Clone returns an independent copy.
func (r Reading) Clone() Reading {
	out := make(Reading, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Validate casts every known field of raw to float64, substituting the field
// default for values that are absent or not numeric. The returned names list
// the defaulted fields in canonical order. Unknown numeric keys are carried
// through unchanged. Validate never fails.
func Validate(raw map[string]any) (Reading, []string) {
	out := make(Reading, len(Fields)+len(ContextFields))
	missing := []string{}

	for _, f := range Fields {
		if v, ok := toFloat(raw[f.Name]); ok {
			out[f.Name] = v
			continue
		}
		out[f.Name] = f.Default
		missing = append(missing, f.Name)
	}
	for _, f := range ContextFields {
		if v, ok := toFloat(raw[f.Name]); ok {
			out[f.Name] = v
			continue
		}
		out[f.Name] = f.Default
	}
	for k, v := range raw {
		if _, seen := out[k]; seen {
			continue
		}
		if f, ok := toFloat(v); ok {
			out[k] = f
		}
	}
	return out, missing
}

// ValidateFloats is Validate for callers that already hold typed values.
func ValidateFloats(raw map[string]float64) (Reading, []string) {
	m := make(map[string]any, len(raw))
	for k, v := range raw {
		m[k] = v
	}
	return Validate(m)
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case bool:
		if t {
			f = 1
		}
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
