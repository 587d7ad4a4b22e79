package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kendall-kelly/inventory-api/store"
)

// Config holds all application configuration
type Config struct {
	GoEnv    string
	Port     string
	LogLevel string

	StoreBackend       string
	DatabaseURL        string
	MongoURI           string
	MongoDatabase      string
	DynamoTablePrefix  string
	DynamoEndpoint     string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	Auth0Domain        string
	Auth0Audience      string
	AllowedOrigins     []string
	SeedOnStart        bool
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// Deployed environments set variables directly
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, using system environment variables")
		}
	} else {
		slog.Debug("loaded configuration", "file", envFile)
	}

	config := FromEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	current = config
	return config, nil
}

// FromEnv reads the configuration from the process environment without
// loading any .env file.
func FromEnv() *Config {
	return &Config{
		GoEnv:              getEnv("GO_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", store.BackendMemory)),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MongoURI:           getEnv("MONGODB_URI", ""),
		MongoDatabase:      getEnv("MONGODB_DATABASE", "inventory"),
		DynamoTablePrefix:  getEnv("DYNAMODB_TABLE_PREFIX", "inventory_"),
		DynamoEndpoint:     getEnv("DYNAMODB_ENDPOINT", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		SeedOnStart:        getBool("SEED_ON_START", false),
	}
}

// Validate checks that the values the selected store backend needs are set
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case store.BackendMemory:
	case store.BackendSQLite, store.BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", c.StoreBackend)
		}
	case store.BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongodb backend")
		}
	case store.BackendDynamo:
		if c.AWSRegion == "" {
			return fmt.Errorf("AWS_REGION is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("%w: %q", store.ErrUnknownBackend, c.StoreBackend)
	}
	if c.Auth0Domain != "" && c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required when AUTH0_DOMAIN is set")
	}
	return nil
}

// StoreOptions returns the options for opening the configured backend
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:        c.StoreBackend,
		DatabaseURL:    c.DatabaseURL,
		MongoURI:       c.MongoURI,
		MongoDatabase:  c.MongoDatabase,
		DynamoPrefix:   c.DynamoTablePrefix,
		DynamoEndpoint: c.DynamoEndpoint,
		AWSRegion:      c.AWSRegion,
	}
}

// AuthEnabled reports whether write routes require a JWT
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != ""
}

// ImagesEnabled reports whether an S3 bucket is configured
func (c *Config) ImagesEnabled() bool {
	return c.AWSS3Bucket != ""
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetConfig returns the configuration installed by Load or SetConfig
func GetConfig() *Config {
	return current
}

// SetConfig installs cfg as the current configuration (primarily for testing)
func SetConfig(cfg *Config) {
	current = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("ignoring invalid boolean", "key", key, "value", value)
		return defaultValue
	}
	return b
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
