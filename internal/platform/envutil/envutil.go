// Package envutil reads typed settings from the environment. Unset, blank
// and unparsable values all yield the caller's default.
package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup[T any](name string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func String(name, def string) string {
	return lookup(name, def, func(s string) (string, error) { return s, nil })
}

func Int(name string, def int) int {
	return lookup(name, def, strconv.Atoi)
}

func Float(name string, def float64) float64 {
	return lookup(name, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// Bool also accepts yes/no and on/off.
func Bool(name string, def bool) bool {
	return lookup(name, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "yes", "y", "on":
			return true, nil
		case "no", "n", "off":
			return false, nil
		}
		return strconv.ParseBool(s)
	})
}

func Duration(name string, def time.Duration) time.Duration {
	return lookup(name, def, time.ParseDuration)
}
