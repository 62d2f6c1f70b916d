package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Valkey      ValkeyConfig      `mapstructure:"valkey"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	EarthEngine EarthEngineConfig `mapstructure:"earthengine"`
	Charts      ChartsConfig      `mapstructure:"charts"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// EarthEngineConfig points at the remote raster analytics service. KeyJSON is
// the service-account credential, read from the EE_KEY_JSON environment
// variable at process start; its absence is fatal, not a per-request error.
type EarthEngineConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Project  string `mapstructure:"project"`
	KeyJSON  string `mapstructure:"-"`
}

// ChartsConfig controls where time-series chart images are written and the
// URL prefix they are served from.
type ChartsConfig struct {
	Dir       string `mapstructure:"dir"`
	URLPrefix string `mapstructure:"url_prefix"`
}

// credentialEnv is the environment variable carrying the service-account key.
const credentialEnv = "EE_KEY_JSON"

// Validate checks the service-account credential. A missing credential is a
// ConfigError: the serving process must refuse to start rather than fail per
// request.
func (e EarthEngineConfig) Validate() error {
	if e.KeyJSON == "" {
		return &domain.ConfigError{Reason: credentialEnv + " environment variable is not set"}
	}
	return nil
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "bloomwatch")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "bloomwatch")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("earthengine.endpoint", "https://earthengine.googleapis.com")
	v.SetDefault("earthengine.project", "bloomwatch")
	v.SetDefault("charts.dir", "static/charts")
	v.SetDefault("charts.url_prefix", "/static/charts")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: BLOOMWATCH_SERVER_PORT → server.port
	v.SetEnvPrefix("BLOOMWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.EarthEngine.KeyJSON = os.Getenv(credentialEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
// The service-account credential is checked separately, by the binaries that
// actually talk to the raster service.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.EarthEngine.Endpoint == "" {
		errs = append(errs, "earthengine.endpoint is required")
	}
	if c.EarthEngine.Project == "" {
		errs = append(errs, "earthengine.project is required")
	}
	if c.Charts.Dir == "" {
		errs = append(errs, "charts.dir is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	if len(errs) > 0 {
		return &domain.ConfigError{Reason: strings.Join(errs, "; ")}
	}
	return nil
}
