package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Device   DeviceConfig
	Policy   PolicyConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int      `env:"APP_PORT" envDefault:"8080"`
	Env                string   `env:"APP_ENV" envDefault:"development"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
	Timezone           string   `env:"APP_TIMEZONE" envDefault:"Local"`
	Locale             string   `env:"APP_LOCALE" envDefault:"ar"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"attendance.db"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       int    `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"postgres"`
	Password   string `env:"DB_PASSWORD"`
	Name       string `env:"DB_NAME" envDefault:"attendance"`
	SSLMode    string `env:"DB_SSL_MODE" envDefault:"disable"`

	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `env:"JWT_SECRET_KEY"`
}

// DeviceConfig controls the fingerprint gateway poller.
type DeviceConfig struct {
	PollEnabled  bool          `env:"DEVICE_POLL_ENABLED" envDefault:"false"`
	PollInterval time.Duration `env:"DEVICE_POLL_INTERVAL" envDefault:"5s"`
	HTTPTimeout  time.Duration `env:"DEVICE_HTTP_TIMEOUT" envDefault:"5s"`
}

type PolicyConfig struct {
	LateThreshold         string `env:"LATE_THRESHOLD" envDefault:"09:00:00"`
	OvertimeClampNegative bool   `env:"OVERTIME_CLAMP_NEGATIVE" envDefault:"false"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.Database.MaxConns < 1 || c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS and DB_MAX_CONNS must be positive")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %s or %s, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.LateThreshold(); err != nil {
		return err
	}
	if c.Device.PollEnabled && c.Device.PollInterval <= 0 {
		return fmt.Errorf("DEVICE_POLL_INTERVAL must be positive")
	}
	return nil
}

// Location resolves APP_TIMEZONE. Device timestamps and check-in dates are read in it.
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" || c.App.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	return loc, nil
}

func (c *Config) LateThreshold() (timeofday.Time, error) {
	t, err := timeofday.Parse(c.Policy.LateThreshold)
	if err != nil {
		return 0, fmt.Errorf("LATE_THRESHOLD is invalid: %w", err)
	}
	return t, nil
}

// LogLevel maps LOG_LEVEL onto slog, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
