// Package config loads runtime settings from the environment (and an
// optional .env file) through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderStatic = "static"
)

// Config holds every setting the server needs at startup.
type Config struct {
	AppPort  string
	LogLevel string

	Database DatabaseConfig
	JWT      JWTConfig
	Provider ProviderConfig

	BcryptCost  int
	RabbitMQURL string // empty disables lifecycle events
}

type DatabaseConfig struct {
	Driver      string
	DSN         string
	AutoMigrate bool
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration // zero or negative issues tokens without exp
}

type ProviderConfig struct {
	Name           string
	Timeout        time.Duration
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	OllamaBaseURL  string
	OllamaModel    string
	StaticResponse string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_DB", "promptly")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "promptly.db")

	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_EXPIRATION", 24*time.Hour)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)

	v.SetDefault("PROVIDER", ProviderOpenAI)
	v.SetDefault("PROVIDER_TIMEOUT", 60*time.Second)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OLLAMA_BASE_URL", "http://localhost:11434")
	v.SetDefault("OLLAMA_MODEL", "llama3.2")
	v.SetDefault("STATIC_RESPONSE", "This is a static response.")

	v.SetDefault("RABBITMQ_URL", "")
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds and validates a Config from an already populated viper.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:  v.GetString("APP_PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Database: DatabaseConfig{
			Driver:      strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:         v.GetString("DATABASE_DSN"),
			AutoMigrate: v.GetBool("AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET_KEY"),
			Expiration: v.GetDuration("JWT_EXPIRATION"),
		},
		Provider: ProviderConfig{
			Name:           strings.ToLower(v.GetString("PROVIDER")),
			Timeout:        v.GetDuration("PROVIDER_TIMEOUT"),
			OpenAIAPIKey:   v.GetString("OPENAI_API_KEY"),
			OpenAIBaseURL:  v.GetString("OPENAI_BASE_URL"),
			OpenAIModel:    v.GetString("OPENAI_MODEL"),
			OllamaBaseURL:  v.GetString("OLLAMA_BASE_URL"),
			OllamaModel:    v.GetString("OLLAMA_MODEL"),
			StaticResponse: v.GetString("STATIC_RESPONSE"),
		},
		BcryptCost:  v.GetInt("BCRYPT_COST"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
	}

	if cfg.Database.DSN == "" {
		switch cfg.Database.Driver {
		case DriverPostgres:
			cfg.Database.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
				v.GetString("POSTGRES_HOST"),
				v.GetString("POSTGRES_USER"),
				v.GetString("POSTGRES_PASSWORD"),
				v.GetString("POSTGRES_DB"),
				v.GetString("POSTGRES_PORT"),
				v.GetString("POSTGRES_SSLMODE"),
			)
		case DriverSQLite:
			cfg.Database.DSN = v.GetString("SQLITE_PATH")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	switch c.Provider.Name {
	case ProviderOpenAI:
		if c.Provider.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when PROVIDER=openai"))
		}
	case ProviderOllama, ProviderStatic:
	default:
		errs = append(errs, fmt.Errorf("unsupported PROVIDER %q", c.Provider.Name))
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	return errors.Join(errs...)
}
