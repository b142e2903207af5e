package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes" yaml:"max_request_bytes"`
	// CORSOrigins lists allowed browser origins. Empty allows local dev origins.
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

type ModelsConfig struct {
	// Source is a local directory or gs://bucket/prefix. Empty serves the
	// built-in demonstration models.
	Source      string   `json:"source" yaml:"source"`
	Pattern     string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	LoadTimeout Duration `json:"load_timeout" yaml:"load_timeout"`
}

type EngineConfig struct {
	// ReliabilityThreshold is the test R² a group model must exceed to join
	// the ensemble.
	ReliabilityThreshold float64  `json:"reliability_threshold" yaml:"reliability_threshold"`
	Locale               string   `json:"locale" yaml:"locale"`
	PredictTimeout       Duration `json:"predict_timeout" yaml:"predict_timeout"`
	BatchLimit           int      `json:"batch_limit" yaml:"batch_limit"`
}

type AuthConfig struct {
	// JWTSecret enables HS256 bearer auth on /v1 when set.
	JWTSecret string `json:"jwt_secret,omitempty" yaml:"jwt_secret,omitempty"`
	Issuer    string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
}

type CacheConfig struct {
	RedisAddr string   `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	Password  string   `json:"password,omitempty" yaml:"password,omitempty"`
	DB        int      `json:"db,omitempty" yaml:"db,omitempty"`
	Prefix    string   `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	TTL       Duration `json:"ttl" yaml:"ttl"`
}

func (c CacheConfig) Enabled() bool { return c.RedisAddr != "" }

type HistoryConfig struct {
	// Driver is "postgres" or "sqlite". Empty disables the audit trail.
	Driver    string   `json:"driver,omitempty" yaml:"driver,omitempty"`
	DSN       string   `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Retention Duration `json:"retention" yaml:"retention"`
	// RetentionSchedule is a five-field cron spec for the purge job.
	RetentionSchedule string `json:"retention_schedule" yaml:"retention_schedule"`
}

func (c HistoryConfig) Enabled() bool { return c.Driver != "" }

type AnalyticsConfig struct {
	ClickHouseAddr string `json:"clickhouse_addr,omitempty" yaml:"clickhouse_addr,omitempty"`
	Database       string `json:"database,omitempty" yaml:"database,omitempty"`
	Username       string `json:"username,omitempty" yaml:"username,omitempty"`
	Password       string `json:"password,omitempty" yaml:"password,omitempty"`
}

func (c AnalyticsConfig) Enabled() bool { return c.ClickHouseAddr != "" }

type Config struct {
	Env       string          `json:"env" yaml:"env"`
	Version   string          `json:"version" yaml:"version"`
	HTTP      HTTPConfig      `json:"http" yaml:"http"`
	Models    ModelsConfig    `json:"models" yaml:"models"`
	Engine    EngineConfig    `json:"engine" yaml:"engine"`
	Auth      AuthConfig      `json:"auth" yaml:"auth"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	History   HistoryConfig   `json:"history" yaml:"history"`
	Analytics AnalyticsConfig `json:"analytics" yaml:"analytics"`
}
