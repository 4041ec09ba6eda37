// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/medreminder/i18n"
)

// Environment is the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// Config holds all application configuration
type Config struct {
	Port             string
	Address          string
	Env              Environment
	LogLevel         string
	LogDir           string
	LogRetentionDays int   // Number of days to keep log files
	MaxLogFileSize   int64 // Maximum log file size in bytes
	MaxRequestBody   int64 // Maximum request body size in bytes
	MaxHeaderSize    int64 // Maximum header size in bytes

	DataFile      string
	Locale        string
	Timezone      string
	Location      *time.Location
	ReminderLead  int           // Minutes before a dose for the advance notice
	NoticeTTL     time.Duration // Lifetime of an in-app notice
	CheckInterval time.Duration // Period of the reset/reminder tick
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnvWithDefault("PORT", "8000"),
		Address:          getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:              Environment(strings.ToLower(getEnvWithDefault("ENV", "dev"))),
		LogLevel:         getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:           getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionDays: getIntEnvWithDefault("LOG_RETENTION_DAYS", 14),
		MaxLogFileSize:   getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:   getInt64EnvWithDefault("MAX_REQUEST_BODY", 65536),      // 64KB default
		MaxHeaderSize:    getInt64EnvWithDefault("MAX_HEADER_SIZE", 65536),       // 64KB default

		DataFile:      getEnvWithDefault("DATA_FILE", "data/medicines.json"),
		Locale:        getEnvWithDefault("LOCALE", "en"),
		Timezone:      getEnvWithDefault("TIMEZONE", "Local"),
		ReminderLead:  getIntEnvWithDefault("REMINDER_LEAD_MINUTES", 10),
		NoticeTTL:     time.Duration(getIntEnvWithDefault("NOTICE_TTL_SECONDS", 10)) * time.Second,
		CheckInterval: time.Duration(getIntEnvWithDefault("CHECK_INTERVAL_SECONDS", 60)) * time.Second,
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateRange(cfg.LogRetentionDays, 1, 365, "LOG_RETENTION_DAYS"); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_DAYS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if strings.TrimSpace(cfg.DataFile) == "" {
		return fmt.Errorf("invalid DATA_FILE: DATA_FILE cannot be empty")
	}

	if err := validateLocale(cfg.Locale); err != nil {
		return fmt.Errorf("invalid LOCALE: %w", err)
	}

	// The advance notice must not coincide with the at-time notice
	if err := validateRange(cfg.ReminderLead, 1, 120, "REMINDER_LEAD_MINUTES"); err != nil {
		return fmt.Errorf("invalid REMINDER_LEAD_MINUTES: %w", err)
	}

	if err := validateRange(int(cfg.NoticeTTL/time.Second), 1, 3600, "NOTICE_TTL_SECONDS"); err != nil {
		return fmt.Errorf("invalid NOTICE_TTL_SECONDS: %w", err)
	}

	// Reminders match on the minute, so the tick must run at least once a minute
	if err := validateRange(int(cfg.CheckInterval/time.Second), 1, 60, "CHECK_INTERVAL_SECONDS"); err != nil {
		return fmt.Errorf("invalid CHECK_INTERVAL_SECONDS: %w", err)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable. The reminder
// holds personal health data without authentication, so only loopback and
// private addresses are accepted.
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() {
		return fmt.Errorf("ADDRESS %s is a public IP, use loopback or a private network range", address)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env Environment) error {
	if env == "" {
		return fmt.Errorf("ENV cannot be empty")
	}

	validEnvs := []Environment{EnvDevelopment, EnvStaging, EnvProduction, EnvTest}
	for _, validEnv := range validEnvs {
		if env == validEnv {
			return nil
		}
	}

	return fmt.Errorf("ENV must be one of: %v, got: %s", validEnvs, env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateLocale checks LOCALE against the bundled catalogs
func validateLocale(locale string) error {
	for _, supported := range i18n.Supported() {
		if strings.EqualFold(locale, supported) || strings.HasPrefix(strings.ToLower(locale), supported+"-") {
			return nil
		}
	}
	return fmt.Errorf("LOCALE must be one of: %v, got: %s", i18n.Supported(), locale)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 10*1024*1024 { // 10MB
		return fmt.Errorf("%s is too large (max 10MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateRange validates an integer setting against inclusive bounds
func validateRange(value, lower, upper int, configName string) error {
	if value < lower || value > upper {
		return fmt.Errorf("%s must be between %d and %d, got: %d", configName, lower, upper, value)
	}
	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE must be positive, got: %d", size)
	}

	// Minimum 1MB, maximum 1GB
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value.
// Unparseable values fall back to the default.
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_DAYS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"DATA_FILE",
		"LOCALE",
		"TIMEZONE",
		"REMINDER_LEAD_MINUTES",
		"NOTICE_TTL_SECONDS",
		"CHECK_INTERVAL_SECONDS",
	}
}
