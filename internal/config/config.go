package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
	Storage  StorageConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AIConfig holds the generative model configuration
type AIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// StorageConfig holds blob storage configuration for report files
type StorageConfig struct {
	AccountName     string
	AccountKey      string
	ReportContainer string
}

// SecurityConfig holds field-level encryption configuration.
// EncryptionKey must be exactly 32 bytes when set; empty disables
// at-rest encryption of medical history fields.
type SecurityConfig struct {
	EncryptionKey string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)

	// AI defaults
	v.SetDefault("ai.model", "gpt-4o-mini")

	// Storage defaults
	v.SetDefault("storage.reportcontainer", "medical-reports")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")

	// Database
	v.BindEnv("database.url", "DATABASE_URL")

	// AI model
	v.BindEnv("ai.apikey", "AI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")
	v.BindEnv("ai.baseurl", "AI_BASE_URL")

	// Storage
	v.BindEnv("storage.accountname", "STORAGE_ACCOUNT_NAME")
	v.BindEnv("storage.accountkey", "STORAGE_ACCOUNT_KEY")
	v.BindEnv("storage.reportcontainer", "STORAGE_REPORT_CONTAINER")

	// Security
	v.BindEnv("security.encryptionkey", "ENCRYPTION_KEY")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if c.AI.APIKey == "" {
		return fmt.Errorf("ai.apikey is required")
	}

	if c.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}

	if c.Storage.AccountName == "" || c.Storage.AccountKey == "" {
		return fmt.Errorf("storage credentials are required (account name + key)")
	}

	if key := c.Security.EncryptionKey; key != "" && len(key) != 32 {
		return fmt.Errorf("security.encryptionkey must be exactly 32 bytes, got %d", len(key))
	}

	return nil
}
