// Package config has the configuration for the consolidation pipeline
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment is the deployment environment the tool runs in
type Environment int

const (
	EnvDevelopment Environment = iota
	EnvStaging
	EnvProduction
	EnvTest
)

// String returns the short name used in the ENV variable
func (e Environment) String() string {
	switch e {
	case EnvStaging:
		return "staging"
	case EnvProduction:
		return "prod"
	case EnvTest:
		return "test"
	default:
		return "dev"
	}
}

// ParseEnvironment converts an ENV value into an Environment
func ParseEnvironment(value string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", value)
}

var (
	validSortModes = []string{"by-category", "by-ingredient"}
	validFormats   = []string{"indent", "compact"}
	validEncodings = []string{"utf-8", "shift_jis", "auto"}
	validLogLevels = []string{"debug", "info", "warn", "error"}

	// encodingAliases maps the other names of an encoding to its canonical one
	encodingAliases = map[string]string{
		"utf8":      "utf-8",
		"shift-jis": "shift_jis",
		"sjis":      "shift_jis",
		"cp932":     "shift_jis",
	}
)

// Config holds all application configuration
type Config struct {
	Env               Environment `yaml:"-"`
	EnvName           string      `yaml:"env"`
	LogLevel          string      `yaml:"log_level"`
	LogDir            string      `yaml:"log_dir"`             // Empty disables file logging
	LogRetentionWeeks int         `yaml:"log_retention_weeks"` // Number of weeks to keep log files
	MaxLogFileSize    int64       `yaml:"max_log_file_size"`   // Maximum log file size in bytes

	InputPath       string `yaml:"input_path"`
	OutputPath      string `yaml:"output_path"`
	SortMode        string `yaml:"sort_mode"`
	OutputFormat    string `yaml:"output_format"`
	IncludeMetadata bool   `yaml:"include_metadata"`
	InputEncoding   string `yaml:"input_encoding"`
	HeaderLookup    bool   `yaml:"header_lookup"`

	MetricsTextfile string `yaml:"metrics_textfile"` // Prometheus textfile, empty disables
	ScheduleAt      string `yaml:"schedule_at"`      // gocron At() expression, e.g. "06:00;18:00"
	StaleAfterHours int    `yaml:"stale_after_hours"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Env:               EnvDevelopment,
		EnvName:           "dev",
		LogLevel:          "info",
		LogDir:            "logs",
		LogRetentionWeeks: 4,
		MaxLogFileSize:    10 * 1024 * 1024, // 10MB
		InputPath:         "data/supply_medicines.csv",
		OutputPath:        "data/category_data.json",
		SortMode:          "by-category",
		OutputFormat:      "indent",
		InputEncoding:     "utf-8",
		ScheduleAt:        "06:00;18:00",
		StaleAfterHours:   25,
	}
}

// LoadDotEnv loads a .env file from the working directory if there is one
func LoadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env: %w", err)
}

// Load builds the configuration from defaults, an optional YAML file, the
// environment and then overrides, in increasing order of precedence. The
// result is validated once, after every layer has been applied.
func Load(yamlPath string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()

	if yamlPath != "" {
		if err := loadYAML(cfg, yamlPath); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *Config) {
	cfg.EnvName = getEnvWithDefault("ENV", cfg.EnvName)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogDir = getEnvWithDefault("LOG_DIR", cfg.LogDir)
	cfg.LogRetentionWeeks = getIntEnvWithDefault("LOG_RETENTION_WEEKS", cfg.LogRetentionWeeks)
	cfg.MaxLogFileSize = getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", cfg.MaxLogFileSize)
	cfg.InputPath = getEnvWithDefault("INPUT_PATH", cfg.InputPath)
	cfg.OutputPath = getEnvWithDefault("OUTPUT_PATH", cfg.OutputPath)
	cfg.SortMode = getEnvWithDefault("SORT_MODE", cfg.SortMode)
	cfg.OutputFormat = getEnvWithDefault("OUTPUT_FORMAT", cfg.OutputFormat)
	cfg.IncludeMetadata = getBoolEnvWithDefault("INCLUDE_METADATA", cfg.IncludeMetadata)
	cfg.InputEncoding = getEnvWithDefault("INPUT_ENCODING", cfg.InputEncoding)
	cfg.HeaderLookup = getBoolEnvWithDefault("HEADER_LOOKUP", cfg.HeaderLookup)
	cfg.MetricsTextfile = getEnvWithDefault("METRICS_TEXTFILE", cfg.MetricsTextfile)
	cfg.ScheduleAt = getEnvWithDefault("SCHEDULE_AT", cfg.ScheduleAt)
	cfg.StaleAfterHours = getIntEnvWithDefault("STALE_AFTER_HOURS", cfg.StaleAfterHours)
}

// validate checks every value, resolves Env from EnvName and normalizes
// encoding aliases.
func (cfg *Config) validate() error {
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.SortMode = strings.ToLower(cfg.SortMode)
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	cfg.InputEncoding = strings.ToLower(strings.TrimSpace(cfg.InputEncoding))
	if canonical, ok := encodingAliases[cfg.InputEncoding]; ok {
		cfg.InputEncoding = canonical
	}

	env, err := ParseEnvironment(cfg.EnvName)
	if err != nil {
		return fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}
	cfg.Env = env

	if err := validateOneOf("LOG_LEVEL", cfg.LogLevel, validLogLevels); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := validatePath("INPUT_PATH", cfg.InputPath); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := validatePath("OUTPUT_PATH", cfg.OutputPath); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := validateOneOf("SORT_MODE", cfg.SortMode, validSortModes); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := validateOneOf("OUTPUT_FORMAT", cfg.OutputFormat, validFormats); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := validateOneOf("INPUT_ENCODING", cfg.InputEncoding, validEncodings); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("configuration validation failed: invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("configuration validation failed: invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if cfg.StaleAfterHours <= 0 {
		return fmt.Errorf("configuration validation failed: STALE_AFTER_HOURS must be positive, got: %d", cfg.StaleAfterHours)
	}

	return nil
}

// validateOneOf checks value case-insensitively against the allowed list
func validateOneOf(name, value string, allowed []string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}

	value = strings.ToLower(value)
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}

	return fmt.Errorf("%s must be one of: %v, got: %s", name, allowed, value)
}

// validatePath rejects empty paths and directory-looking paths
func validatePath(name, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return fmt.Errorf("%s must name a file, got directory: %s", name, path)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
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

// getIntEnvWithDefault gets an environment variable as int with a default value
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

// getBoolEnvWithDefault gets an environment variable as bool with a default value
func getBoolEnvWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"INPUT_PATH",
		"OUTPUT_PATH",
		"SORT_MODE",
		"OUTPUT_FORMAT",
		"INCLUDE_METADATA",
		"INPUT_ENCODING",
		"HEADER_LOOKUP",
		"METRICS_TEXTFILE",
		"SCHEDULE_AT",
		"STALE_AFTER_HOURS",
	}
}
