package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "cosmosdump/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"COSMOS_CONNECTION_STRING", "COSMOS_ACCOUNT", "COSMOS_KEY", "AWS_REGION", "DYNAMODB_DATABASE_NAME", "DUMP_OUTPUT",
		"DUMP_SOURCE", "DUMP_FORMAT", "DUMP_PAGE_SIZE", "DUMP_TIMEOUT", "MONGODB_URI", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, SourceCosmos, cfg.Source)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDBURI)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("COSMOS_CONNECTION_STRING", "AccountEndpoint=e;AccountKey=k")
	t.Setenv("DUMP_SOURCE", "mongodb")
	t.Setenv("DUMP_FORMAT", "yaml")
	t.Setenv("DUMP_PAGE_SIZE", "25")
	t.Setenv("DUMP_TIMEOUT", "90s")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "AccountEndpoint=e;AccountKey=k", cfg.ConnectionString)
	assert.Equal(t, SourceMongoDB, cfg.Source)
	assert.Equal(t, FormatYAML, cfg.Format)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "eu-west-1", cfg.Region)
}

func TestLoadConfig_BadValueIsConfigurationError(t *testing.T) {
	t.Setenv("DUMP_PAGE_SIZE", "lots")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Output = "dump.json"
		return cfg
	}

	cfg := valid()
	cfg.Source = " Cosmos "
	cfg.Format = "YAML"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, SourceCosmos, cfg.Source)
	assert.Equal(t, FormatYAML, cfg.Format)

	tests := []struct {
		name   string
		mutate func(*Config)
		cause  error
	}{
		{"unknown source", func(c *Config) { c.Source = "cassandra" }, apperrors.ErrInvalidSource},
		{"unknown format", func(c *Config) { c.Format = "xml" }, apperrors.ErrInvalidFormat},
		{"missing output", func(c *Config) { c.Output = "" }, apperrors.ErrInvalidDestination},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, nil},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, nil},
		{"mongodb without uri", func(c *Config) { c.Source = SourceMongoDB; c.MongoDBURI = "" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsConfiguration(err))
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

func TestDynamoDBDatabase(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "dynamodb", cfg.DynamoDBDatabase())
	cfg.Region = "us-east-1"
	assert.Equal(t, "us-east-1", cfg.DynamoDBDatabase())
	cfg.DynamoDBDatabaseName = "prod"
	assert.Equal(t, "prod", cfg.DynamoDBDatabase())
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("COSMOSDUMP_DOTENV_PROBE=loaded\n"), 0o600))
	t.Setenv("COSMOSDUMP_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("COSMOSDUMP_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("COSMOSDUMP_DOTENV_PROBE"))
}
