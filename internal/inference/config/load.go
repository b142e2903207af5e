package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eduymaz/aller-mind/internal/platform/envutil"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Env:     "development",
		Version: "dev",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
		},
		Models: ModelsConfig{
			Pattern:     "group%d.json",
			LoadTimeout: Duration{Duration: 30 * time.Second},
		},
		Engine: EngineConfig{
			ReliabilityThreshold: 0.95,
			Locale:               "en",
			PredictTimeout:       Duration{Duration: 5 * time.Second},
			BatchLimit:           10,
		},
		Cache: CacheConfig{
			Prefix: "allermind:",
			TTL:    Duration{Duration: 10 * time.Minute},
		},
		History: HistoryConfig{
			Retention:         Duration{Duration: 30 * 24 * time.Hour},
			RetentionSchedule: "15 3 * * *",
		},
		Analytics: AnalyticsConfig{
			Database: "allermind",
			Username: "default",
		},
	}
}

// Load builds the configuration from defaults, then the file at
// AM_CONFIG_PATH (or ./config/config.{json,yaml,yml}), then environment
// variables. A .env file in the working directory seeds variables that are
// not already set.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := defaultConfig()

	path := strings.TrimSpace(os.Getenv("AM_CONFIG_PATH"))
	if path == "" {
		path = findDefaultFile()
	}
	if path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findDefaultFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		p := filepath.Join(wd, "config", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// readFile decodes onto cfg, so keys absent from the file keep their defaults.
func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.Version = envutil.String("AM_VERSION", cfg.Version)

	cfg.HTTP.Addr = envutil.String("AM_HTTP_ADDR", cfg.HTTP.Addr)
	if v := envutil.String("AM_CORS_ORIGINS", ""); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	cfg.Models.Source = envutil.String("AM_MODELS_SOURCE", cfg.Models.Source)
	cfg.Models.Pattern = envutil.String("AM_MODELS_PATTERN", cfg.Models.Pattern)

	cfg.Engine.ReliabilityThreshold = envutil.Float("AM_RELIABILITY_THRESHOLD", cfg.Engine.ReliabilityThreshold)
	cfg.Engine.Locale = envutil.String("AM_LOCALE", cfg.Engine.Locale)
	cfg.Engine.PredictTimeout.Duration = envutil.Duration("AM_PREDICT_TIMEOUT", cfg.Engine.PredictTimeout.Duration)

	cfg.Auth.JWTSecret = envutil.String("AM_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = envutil.String("AM_JWT_ISSUER", cfg.Auth.Issuer)

	cfg.Cache.RedisAddr = envutil.String("REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.Password = envutil.String("REDIS_PASSWORD", cfg.Cache.Password)
	cfg.Cache.DB = envutil.Int("REDIS_DB", cfg.Cache.DB)
	cfg.Cache.TTL.Duration = envutil.Duration("AM_CACHE_TTL", cfg.Cache.TTL.Duration)

	cfg.History.Driver = envutil.String("AM_HISTORY_DRIVER", cfg.History.Driver)
	cfg.History.DSN = envutil.String("AM_HISTORY_DSN", cfg.History.DSN)
	cfg.History.Retention.Duration = envutil.Duration("AM_HISTORY_RETENTION", cfg.History.Retention.Duration)
	cfg.History.RetentionSchedule = envutil.String("AM_HISTORY_RETENTION_SCHEDULE", cfg.History.RetentionSchedule)

	cfg.Analytics.ClickHouseAddr = envutil.String("CLICKHOUSE_ADDR", cfg.Analytics.ClickHouseAddr)
	cfg.Analytics.Database = envutil.String("CLICKHOUSE_DATABASE", cfg.Analytics.Database)
	cfg.Analytics.Username = envutil.String("CLICKHOUSE_USERNAME", cfg.Analytics.Username)
	cfg.Analytics.Password = envutil.String("CLICKHOUSE_PASSWORD", cfg.Analytics.Password)
}

func (cfg *Config) normalize() error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if strings.TrimSpace(cfg.Models.Pattern) == "" {
		cfg.Models.Pattern = "group%d.json"
	}
	if cfg.Models.LoadTimeout.Duration <= 0 {
		cfg.Models.LoadTimeout.Duration = 30 * time.Second
	}

	if t := cfg.Engine.ReliabilityThreshold; t <= 0 || t >= 1 {
		return fmt.Errorf("engine.reliability_threshold must be in (0, 1), got %v", t)
	}
	cfg.Engine.Locale = strings.ToLower(strings.TrimSpace(cfg.Engine.Locale))
	switch cfg.Engine.Locale {
	case "":
		cfg.Engine.Locale = "en"
	case "en", "tr":
	default:
		return fmt.Errorf("engine.locale must be en or tr, got %q", cfg.Engine.Locale)
	}
	if cfg.Engine.PredictTimeout.Duration <= 0 {
		cfg.Engine.PredictTimeout.Duration = 5 * time.Second
	}
	if cfg.Engine.BatchLimit <= 0 {
		cfg.Engine.BatchLimit = 10
	}

	cfg.History.Driver = strings.ToLower(strings.TrimSpace(cfg.History.Driver))
	switch cfg.History.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("history.driver must be postgres or sqlite, got %q", cfg.History.Driver)
	}
	if cfg.History.Enabled() && strings.TrimSpace(cfg.History.DSN) == "" {
		return errors.New("history.dsn is required when history.driver is set")
	}
	if cfg.Cache.TTL.Duration <= 0 {
		cfg.Cache.TTL.Duration = 10 * time.Minute
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
