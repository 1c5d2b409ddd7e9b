// Package config manages environment variables.
//
// It reads variables from the `.env` file (when present),
// loads them into structured Go types and validates that
// required values are present so they can be reused across
// the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix FUNCTIONS_.
	Keys are normalized (lowercased, prefix removed) and nested struct
	fields are addressed with "." in the variable name, e.g.

	  FUNCTIONS_SERVER.PORT        -> server.port        -> Config.Server.Port
	  FUNCTIONS_STORAGE.MONGO.URL  -> storage.mongo.url  -> Config.Storage.Mongo.URL
*/

// EnvPrefix is the prefix every configuration variable carries.
const EnvPrefix = "FUNCTIONS_"

// Function names, used to restrict a process to a single deployed function.
const (
	FunctionProfile      = "user"
	FunctionAccountSync  = "account-sync"
	FunctionNewsNotify   = "news-notify"
	FunctionWelcomeEmail = "welcome-email"
)

// Storage drivers.
const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Auth providers.
const (
	AuthProviderClerk = "clerk"
	AuthProviderJWT   = "jwt"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Storage       StorageConfig        `koanf:"storage" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Triggers      TriggersConfig       `koanf:"triggers"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`

	// FunctionName restricts the process to one function (see Function* constants).
	// Empty means every function is served.
	FunctionName string `koanf:"function_name"`
}

// Serves reports whether the named function should be registered by this process.
func (p Primary) Serves(name string) bool {
	return p.FunctionName == "" || p.FunctionName == name
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the per-IP request rate on the profile routes, in requests
	// per second. Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
}

// StorageConfig selects the profile store backend and carries its connection settings.
type StorageConfig struct {
	Driver   string         `koanf:"driver" validate:"required,oneof=mongo postgres memory"`
	Mongo    MongoConfig    `koanf:"mongo"`
	Database DatabaseConfig `koanf:"database"`
}

// MongoConfig contains the document store connection string.
// The database name is taken from the URI path, falling back to Database.
type MongoConfig struct {
	URL      string `koanf:"url"`
	Database string `koanf:"database"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores authentication settings.
//
// Provider "clerk" verifies session tokens with the Clerk secret key.
// Provider "jwt" verifies HS256 tokens signed with JWTSecret.
type AuthConfig struct {
	Provider  string `koanf:"provider" validate:"required,oneof=clerk jwt"`
	SecretKey string `koanf:"secret_key"`
	JWTSecret string `koanf:"jwt_secret"`
	Issuer    string `koanf:"issuer"`
}

// IntegrationConfig holds third-party API credentials.
// An empty ResendAPIKey disables the welcome email.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// TriggersConfig controls how events reach the background handlers.
type TriggersConfig struct {
	// NewsTopic is the broadcast topic for news notifications.
	NewsTopic string `koanf:"news_topic"`

	// WatchNews starts a change stream on the news collection (mongo driver only).
	WatchNews bool `koanf:"watch_news"`

	// Concurrency is the number of asynq workers.
	Concurrency int `koanf:"concurrency"`
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config, validates it, applies defaults and returns the resulting config.
func LoadConfig() (*Config, error) {
	return load(EnvPrefix)
}

func load(prefix string) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, prefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.validateDrivers(); err != nil {
		return nil, err
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Primary.FunctionName == "" {
		// Set by the hosting platform when a single function is deployed.
		c.Primary.FunctionName = os.Getenv("FUNCTION_NAME")
	}
	if c.Triggers.NewsTopic == "" {
		c.Triggers.NewsTopic = "news"
	}
	if c.Triggers.Concurrency <= 0 {
		c.Triggers.Concurrency = 10
	}
	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = "App <onboarding@resend.dev>"
	}
	if c.Storage.Database.SSLMode == "" {
		c.Storage.Database.SSLMode = "disable"
	}

	defaults := DefaultObservabilityConfig()
	if c.Observability == nil {
		c.Observability = defaults
	} else {
		c.Observability.fillFrom(defaults)
	}

	// Service name and environment are always derived, never configured.
	c.Observability.ServiceName = defaults.ServiceName
	c.Observability.Environment = c.Primary.Env
}

// validateDrivers checks the settings that only matter for the selected
// storage driver and auth provider.
func (c *Config) validateDrivers() error {
	switch c.Storage.Driver {
	case StorageMongo:
		if c.Storage.Mongo.URL == "" {
			return fmt.Errorf("storage.mongo.url is required for the mongo driver")
		}
	case StoragePostgres:
		db := c.Storage.Database
		if db.Host == "" || db.Port == 0 || db.User == "" || db.Name == "" {
			return fmt.Errorf("storage.database host, port, user and name are required for the postgres driver")
		}
	}

	switch c.Auth.Provider {
	case AuthProviderClerk:
		if c.Auth.SecretKey == "" {
			return fmt.Errorf("auth.secret_key is required for the clerk provider")
		}
	case AuthProviderJWT:
		if len(c.Auth.JWTSecret) < 16 {
			return fmt.Errorf("auth.jwt_secret must be at least 16 characters")
		}
	}

	return nil
}
