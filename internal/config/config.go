package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	SQLite    SQLiteConfig
	LLM       LLMConfig
	Telemetry TelemetryConfig
	Audit     AuditConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LoggerConfig struct {
	Level  string
	Format string
}

// Storage drivers.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type StorageConfig struct {
	Driver       string
	DataDir      string
	ArtifactsDir string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type SQLiteConfig struct {
	Path string
}

type LLMConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type TelemetryConfig struct {
	MetricsEnabled bool
	TracingEnabled bool
	ServiceName    string
}

type AuditConfig struct {
	SummaryLimit int
	DefaultActor string
}

// Load reads configuration from the environment and, when CONFIG_FILE is set,
// from that file. Environment values win.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("STORAGE_DRIVER", DriverFile)
	v.SetDefault("STORAGE_DATA_DIR", "./data")
	v.SetDefault("STORAGE_ARTIFACTS_DIR", "./artifacts")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "model_governance")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("SQLITE_PATH", "./data/governance.db")
	v.SetDefault("LLM_ENABLED", false)
	v.SetDefault("LLM_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_MODEL", "gpt-3.5-turbo")
	v.SetDefault("LLM_TIMEOUT", "30s")
	v.SetDefault("TELEMETRY_METRICS_ENABLED", true)
	v.SetDefault("TELEMETRY_TRACING_ENABLED", false)
	v.SetDefault("TELEMETRY_SERVICE_NAME", "model-governance-service")
	v.SetDefault("AUDIT_SUMMARY_LIMIT", 50)
	v.SetDefault("AUDIT_DEFAULT_ACTOR", "system")

	// Env
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Storage: StorageConfig{
			Driver:       v.GetString("STORAGE_DRIVER"),
			DataDir:      v.GetString("STORAGE_DATA_DIR"),
			ArtifactsDir: v.GetString("STORAGE_ARTIFACTS_DIR"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: duration(v, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		LLM: LLMConfig{
			Enabled: v.GetBool("LLM_ENABLED"),
			BaseURL: v.GetString("LLM_BASE_URL"),
			APIKey:  v.GetString("LLM_API_KEY"),
			Model:   v.GetString("LLM_MODEL"),
			Timeout: duration(v, "LLM_TIMEOUT", 30*time.Second),
		},
		Telemetry: TelemetryConfig{
			MetricsEnabled: v.GetBool("TELEMETRY_METRICS_ENABLED"),
			TracingEnabled: v.GetBool("TELEMETRY_TRACING_ENABLED"),
			ServiceName:    v.GetString("TELEMETRY_SERVICE_NAME"),
		},
		Audit: AuditConfig{
			SummaryLimit: v.GetInt("AUDIT_SUMMARY_LIMIT"),
			DefaultActor: v.GetString("AUDIT_DEFAULT_ACTOR"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverMemory, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Audit.SummaryLimit <= 0 {
		return fmt.Errorf("AUDIT_SUMMARY_LIMIT must be positive, got %d", c.Audit.SummaryLimit)
	}
	return nil
}

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
