package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points Load at a scratch working directory with no config file.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, k := range []string{"AM_CONFIG_PATH", "AM_HTTP_ADDR", "AM_MODELS_SOURCE", "AM_RELIABILITY_THRESHOLD", "AM_LOCALE", "AM_HISTORY_DRIVER", "AM_HISTORY_DSN", "REDIS_ADDR", "LOG_MODE"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Engine.ReliabilityThreshold != 0.95 || cfg.Engine.BatchLimit != 10 {
		t.Fatalf("defaults=%+v", cfg)
	}
	if cfg.Models.Source != "" || cfg.History.Enabled() || cfg.Cache.Enabled() {
		t.Fatalf("optional backends enabled by default: %+v", cfg)
	}
}

func TestLoadYAMLFileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "allermind.yaml")
	body := `
http:
  addr: ":9090"
  shutdown_timeout: 3s
models:
  source: gs://models/experts
engine:
  reliability_threshold: 0.9
  locale: TR
  predict_timeout: 2000000000
history:
  driver: sqlite
  dsn: "file::memory:"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("AM_CONFIG_PATH", path)
	t.Setenv("AM_HTTP_ADDR", ":7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("env override lost: addr=%q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ShutdownTimeout.Duration != 3*time.Second || cfg.Engine.PredictTimeout.Duration != 2*time.Second {
		t.Fatalf("durations: shutdown=%v predict=%v", cfg.HTTP.ShutdownTimeout.Duration, cfg.Engine.PredictTimeout.Duration)
	}
	if cfg.Engine.Locale != "tr" || cfg.Engine.ReliabilityThreshold != 0.9 {
		t.Fatalf("engine=%+v", cfg.Engine)
	}
	if cfg.Models.Source != "gs://models/experts" || cfg.Models.Pattern != "group%d.json" {
		t.Fatalf("models=%+v", cfg.Models)
	}
	if cfg.HTTP.IdleTimeout.Duration != 2*time.Minute {
		t.Fatalf("unset key lost its default: idle=%v", cfg.HTTP.IdleTimeout.Duration)
	}
	if !cfg.History.Enabled() {
		t.Fatalf("history not enabled")
	}
}

func TestLoadJSONFromDefaultLocation(t *testing.T) {
	dir := isolate(t)
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	body := `{"http": {"read_header_timeout": "1s"}, "engine": {"batch_limit": 4}}`
	if err := os.WriteFile(filepath.Join(dir, "config", "config.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ReadHeaderTimeout.Duration != time.Second || cfg.Engine.BatchLimit != 4 {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"AM_RELIABILITY_THRESHOLD": "1.5",
		"AM_LOCALE":                "de",
		"AM_HISTORY_DRIVER":        "mysql",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s accepted", key, val)
			}
		})
	}

	isolate(t)
	t.Setenv("AM_HISTORY_DRIVER", "postgres")
	if _, err := Load(); err == nil {
		t.Fatalf("postgres history without dsn accepted")
	}
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	if err := d.UnmarshalJSON([]byte(`"250ms"`)); err != nil || d.Duration != 250*time.Millisecond {
		t.Fatalf("string form: %v %v", d.Duration, err)
	}
	if err := d.UnmarshalJSON([]byte(`1000`)); err != nil || d.Duration != time.Microsecond {
		t.Fatalf("int form: %v %v", d.Duration, err)
	}
	if err := d.UnmarshalJSON([]byte(`true`)); err == nil {
		t.Fatalf("bool accepted")
	}
}
