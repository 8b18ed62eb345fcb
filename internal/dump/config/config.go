package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	apperrors "cosmosdump/internal/shared/errors"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Supported account sources
const (
	SourceCosmos   = "cosmos"
	SourceMongoDB  = "mongodb"
	SourceDynamoDB = "dynamodb"
)

// Supported output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds everything a dump run needs. Values come from the environment
// and are then overridden by explicitly set command-line flags.
type Config struct {
	// Cosmos credentials
	ConnectionString string `env:"COSMOS_CONNECTION_STRING"`
	Account          string `env:"COSMOS_ACCOUNT"`
	Key              string `env:"COSMOS_KEY"`

	// Source selection
	Source               string `env:"DUMP_SOURCE" envDefault:"cosmos"`
	MongoDBURI           string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	Region               string `env:"AWS_REGION"`
	DynamoDBDatabaseName string `env:"DYNAMODB_DATABASE_NAME"`

	// Output
	Output string `env:"DUMP_OUTPUT"`
	Format string `env:"DUMP_FORMAT" envDefault:"json"`

	// Traversal
	PageSize int           `env:"DUMP_PAGE_SIZE" envDefault:"100"`
	Timeout  time.Duration `env:"DUMP_TIMEOUT" envDefault:"0s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// LoadConfig starts from DefaultConfig and overlays environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.NewConfigurationError("failed to load configuration from environment").
			WithCause(err).
			WithComponent("config")
	}
	return cfg, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Source:     SourceCosmos,
		MongoDBURI: "mongodb://localhost:27017",
		Format:     FormatJSON,
		PageSize:   100,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Validate checks the values that do not depend on a remote service.
// Credentials are checked later by the credential resolver.
func (c *Config) Validate() error {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))

	switch c.Source {
	case SourceCosmos, SourceMongoDB, SourceDynamoDB:
	default:
		return apperrors.NewConfigurationError(fmt.Sprintf("source %q is not one of cosmos, mongodb, dynamodb", c.Source)).
			WithCause(apperrors.ErrInvalidSource).
			WithComponent("config")
	}

	switch c.Format {
	case FormatJSON, FormatYAML:
	default:
		return apperrors.NewConfigurationError(fmt.Sprintf("format %q is not one of json, yaml", c.Format)).
			WithCause(apperrors.ErrInvalidFormat).
			WithComponent("config")
	}

	if c.Output == "" {
		return apperrors.NewConfigurationError("an output path is required").
			WithCause(apperrors.ErrInvalidDestination).
			WithComponent("config")
	}
	if c.PageSize <= 0 {
		return apperrors.NewConfigurationError(fmt.Sprintf("page size must be positive, got %d", c.PageSize)).
			WithComponent("config")
	}
	if c.Timeout < 0 {
		return apperrors.NewConfigurationError(fmt.Sprintf("timeout must not be negative, got %s", c.Timeout)).
			WithComponent("config")
	}
	if c.Source == SourceMongoDB && c.MongoDBURI == "" {
		return apperrors.NewConfigurationError("mongodb source requires MONGODB_URI or --mongodb-uri").
			WithComponent("config")
	}
	return nil
}

// DynamoDBDatabase is the single database name a DynamoDB account exports as
func (c *Config) DynamoDBDatabase() string {
	if c.DynamoDBDatabaseName != "" {
		return c.DynamoDBDatabaseName
	}
	if c.Region != "" {
		return c.Region
	}
	return "dynamodb"
}
