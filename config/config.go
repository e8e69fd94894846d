// Package config handles loading and validation of application configuration
// from environment variables using Viper, plus the YAML risk-threshold
// catalog file.
package config

import (
	"fmt"

	"github.com/routecast/routecast-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
}

// DatabaseConfig holds PostgreSQL connection details for the trip store.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST" yaml:"host"`
	Port         int    `mapstructure:"PORT" yaml:"port"`
	User         string `mapstructure:"USER" yaml:"user"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	Name         string `mapstructure:"NAME" yaml:"name"`
	SSLMode      string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
}

// ConnString returns a key-value pgx connection string.
func (c *DatabaseConfig) ConnString() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslmode)
}

// RedisConfig holds Redis connection details for the snapshot backend.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
}

// EmailConfig holds configuration for sending report emails via Resend.
type EmailConfig struct {
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
}

// WeatherConfig holds the forecast provider and cache settings.
type WeatherConfig struct {
	ProviderBaseURL string `mapstructure:"PROVIDER_BASE_URL" yaml:"provider_base_url"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS" yaml:"cache_ttl_seconds"`
	CacheMaxEntries int    `mapstructure:"CACHE_MAX_ENTRIES" yaml:"cache_max_entries"`
}

// RiskConfig points at the metric-threshold catalog file driving the risk
// engine.
type RiskConfig struct {
	ThresholdsPath string `mapstructure:"THRESHOLDS_PATH" yaml:"thresholds_path"`
}

// ReportConfig controls scheduled report generation and snapshot storage.
type ReportConfig struct {
	IntervalHours int    `mapstructure:"INTERVAL_HOURS" yaml:"interval_hours"`
	SnapshotDir   string `mapstructure:"SNAPSHOT_DIR" yaml:"snapshot_dir"`
	// SnapshotBackend selects "file" or "redis".
	SnapshotBackend string `mapstructure:"SNAPSHOT_BACKEND" yaml:"snapshot_backend"`
}

// ChangeConfig holds the per-metric deltas above which a weather change is
// considered significant.
type ChangeConfig struct {
	TemperatureC    float64 `mapstructure:"TEMPERATURE_C" yaml:"temperature_c"`
	WindKmh         float64 `mapstructure:"WIND_KMH" yaml:"wind_kmh"`
	PrecipitationMM float64 `mapstructure:"PRECIPITATION_MM" yaml:"precipitation_mm"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server   ServerConfig   `mapstructure:"SERVER" yaml:"server"`
	Database DatabaseConfig `mapstructure:"DATABASE" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"REDIS" yaml:"redis"`
	Email    EmailConfig    `mapstructure:"EMAIL" yaml:"email"`
	Weather  WeatherConfig  `mapstructure:"WEATHER" yaml:"weather"`
	Risk     RiskConfig     `mapstructure:"RISK" yaml:"risk"`
	Report   ReportConfig   `mapstructure:"REPORT" yaml:"report"`
	Change   ChangeConfig   `mapstructure:"CHANGE" yaml:"change"`
}

// IsProduction returns true if the application runs in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables, applies
// defaults, unmarshals and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "routecast_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 5)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("WEATHER.PROVIDER_BASE_URL", "")
	v.SetDefault("WEATHER.CACHE_TTL_SECONDS", 3600)
	v.SetDefault("WEATHER.CACHE_MAX_ENTRIES", 100)
	v.SetDefault("RISK.THRESHOLDS_PATH", "thresholds.yaml")
	v.SetDefault("REPORT.INTERVAL_HOURS", 12)
	v.SetDefault("REPORT.SNAPSHOT_DIR", "snapshots")
	v.SetDefault("REPORT.SNAPSHOT_BACKEND", "file")
	v.SetDefault("CHANGE.TEMPERATURE_C", 5)
	v.SetDefault("CHANGE.WIND_KMH", 20)
	v.SetDefault("CHANGE.PRECIPITATION_MM", 10)

	bindings := [][2]string{
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
		{"WEATHER.PROVIDER_BASE_URL", "WEATHER_PROVIDER_BASE_URL"},
		{"WEATHER.CACHE_TTL_SECONDS", "WEATHER_CACHE_TTL_SECONDS"},
		{"WEATHER.CACHE_MAX_ENTRIES", "WEATHER_CACHE_MAX_ENTRIES"},
		{"RISK.THRESHOLDS_PATH", "RISK_THRESHOLDS_PATH"},
		{"REPORT.INTERVAL_HOURS", "REPORT_INTERVAL_HOURS"},
		{"REPORT.SNAPSHOT_DIR", "REPORT_SNAPSHOT_DIR"},
		{"REPORT.SNAPSHOT_BACKEND", "REPORT_SNAPSHOT_BACKEND"},
	}
	if err := bindEnvVars(v, bindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"snapshotBackend", cfg.Report.SnapshotBackend,
		"resendKey", logger.MaskSensitiveString(cfg.Email.ResendAPIKey, 3, 2),
	)
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Weather.CacheTTLSeconds <= 0 {
		return fmt.Errorf("WEATHER.CACHE_TTL_SECONDS must be positive")
	}
	if c.Weather.CacheMaxEntries <= 0 {
		return fmt.Errorf("WEATHER.CACHE_MAX_ENTRIES must be positive")
	}
	switch c.Report.SnapshotBackend {
	case "file", "redis":
	default:
		return fmt.Errorf("REPORT.SNAPSHOT_BACKEND must be \"file\" or \"redis\", got %q", c.Report.SnapshotBackend)
	}
	return nil
}
