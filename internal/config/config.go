package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverSurreal  = "surreal"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Provider exposes configuration values to the rest of the application.
// Components depend on this interface rather than on *Config so tests can
// substitute a partial implementation.
type Provider interface {
	GetDBDriver() string
	GetDBURL() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration
	GetSQLDSN() string

	GetServerAddr() string
	GetAppBaseURL() string
	GetCORSOrigins() []string
	GetSessionSecret() string
	GetJWTSecret() string
	GetJWTTTL() time.Duration

	GetStorageDir() string
	GetMaxUploadSize() int64
	GetAllowedImageTypes() []string

	GetEmailProvider() string
	GetEmailAPIKey() string
	GetEmailSender() string

	GetActivityBufferSize() int

	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetTracingZipkinURL() string
}

// Config holds all configuration for the application.
type Config struct {
	DBDriver         string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DBURL            string        `env:"SURREAL_URL"`
	DBNs             string        `env:"SURREAL_NS"`
	DBDb             string        `env:"SURREAL_DB"`
	DBUser           string        `env:"SURREAL_USER"`
	DBPass           string        `env:"SURREAL_PASS"`
	DBQueryTimeout   time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
	DBExecuteTimeout time.Duration `env:"DB_EXECUTE_TIMEOUT" envDefault:"10s"`
	SQLDSN           string        `env:"SQL_DSN" envDefault:"propdesk.db"`

	ServerAddr    string        `env:"SERVER_ADDR" envDefault:":8080"`
	AppBaseURL    string        `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	CORSOrigins   []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	SessionSecret string        `env:"SESSION_SECRET"`
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`

	StorageDir        string   `env:"STORAGE_DIR" envDefault:"uploads"`
	MaxUploadSize     int64    `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
	AllowedImageTypes []string `env:"ALLOWED_IMAGE_TYPES" envSeparator:"," envDefault:"image/jpeg,image/png,image/webp"`

	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"log"`
	EmailAPIKey   string `env:"EMAIL_API_KEY"`
	EmailSender   string `env:"EMAIL_SENDER"`

	ActivityBufferSize int `env:"ACTIVITY_BUFFER_SIZE" envDefault:"100"`

	TracingEnabled     bool   `env:"TRACING_ENABLED" envDefault:"false"`
	TracingServiceName string `env:"TRACING_SERVICE_NAME" envDefault:"propdesk"`
	TracingZipkinURL   string `env:"TRACING_ZIPKIN_URL" envDefault:"http://localhost:9411/api/v2/spans"`
}

// New loads configuration from the environment, reading a .env file first
// when one is present.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// slog is not configured yet at this point.
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv parses the current process environment without touching .env files.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings required by the selected backend are present.
func (c *Config) Validate() error {
	var missing []string
	switch c.DBDriver {
	case DriverSurreal:
		if c.DBURL == "" {
			missing = append(missing, "SURREAL_URL")
		}
		if c.DBNs == "" {
			missing = append(missing, "SURREAL_NS")
		}
		if c.DBDb == "" {
			missing = append(missing, "SURREAL_DB")
		}
	case DriverPostgres, DriverSQLite:
		if c.SQLDSN == "" {
			missing = append(missing, "SQL_DSN")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (expected %s, %s or %s)", c.DBDriver, DriverSurreal, DriverPostgres, DriverSQLite)
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return errors.New("required environment variables are not set: " + strings.Join(missing, ", "))
	}
	if c.DBQueryTimeout <= 0 || c.DBExecuteTimeout <= 0 {
		return errors.New("DB_QUERY_TIMEOUT and DB_EXECUTE_TIMEOUT must be positive durations")
	}
	return nil
}

func (c *Config) GetDBDriver() string                { return c.DBDriver }
func (c *Config) GetDBURL() string                   { return c.DBURL }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetSQLDSN() string                  { return c.SQLDSN }
func (c *Config) GetServerAddr() string              { return c.ServerAddr }
func (c *Config) GetAppBaseURL() string              { return c.AppBaseURL }
func (c *Config) GetCORSOrigins() []string           { return c.CORSOrigins }
func (c *Config) GetSessionSecret() string           { return c.SessionSecret }
func (c *Config) GetJWTSecret() string               { return c.JWTSecret }
func (c *Config) GetJWTTTL() time.Duration           { return c.JWTTTL }
func (c *Config) GetStorageDir() string              { return c.StorageDir }
func (c *Config) GetMaxUploadSize() int64            { return c.MaxUploadSize }
func (c *Config) GetAllowedImageTypes() []string     { return c.AllowedImageTypes }
func (c *Config) GetEmailProvider() string           { return c.EmailProvider }
func (c *Config) GetEmailAPIKey() string             { return c.EmailAPIKey }
func (c *Config) GetEmailSender() string             { return c.EmailSender }
func (c *Config) GetActivityBufferSize() int         { return c.ActivityBufferSize }
func (c *Config) GetTracingEnabled() bool            { return c.TracingEnabled }
func (c *Config) GetTracingServiceName() string      { return c.TracingServiceName }
func (c *Config) GetTracingZipkinURL() string        { return c.TracingZipkinURL }
