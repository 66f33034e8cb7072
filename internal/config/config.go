package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hpungsan/pantry/internal/validate"
)

// Environment variables read on top of config.json.
const (
	EnvAIAPIKey = "PANTRY_AI_API_KEY"
	EnvRedisURL = "PANTRY_REDIS_URL"
	EnvLogLevel = "PANTRY_LOG_LEVEL"
)

const (
	FileName    = "config.json"
	EnvFileName = ".env"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds application configuration.
type Config struct {
	// OFFBaseURL is the Open Food Facts host used for barcode lookups
	OFFBaseURL string `json:"off_base_url,omitempty" validate:"omitempty,url"`

	// LookupTimeoutSeconds bounds a single product lookup request
	LookupTimeoutSeconds int `json:"lookup_timeout_seconds,omitempty" validate:"gte=0"`

	// AIBaseURL is an OpenAI-compatible API root (".../v1")
	AIBaseURL string `json:"ai_base_url,omitempty" validate:"omitempty,url"`

	AIModel string `json:"ai_model,omitempty"`

	AITimeoutSeconds int `json:"ai_timeout_seconds,omitempty" validate:"gte=0"`

	// AIAPIKey comes from the environment only and is never written to config.json.
	AIAPIKey string `json:"-"`

	// StorageBackend selects where collections persist: "sqlite" (default) or "redis".
	StorageBackend string `json:"storage_backend,omitempty" validate:"omitempty,oneof=sqlite redis"`

	// RedisURL is required when StorageBackend is "redis".
	RedisURL string `json:"redis_url,omitempty" validate:"required_if=StorageBackend redis"`

	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "product", "builder", "recipe", "idea".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		OFFBaseURL:           "https://world.openfoodfacts.org",
		LookupTimeoutSeconds: 10,
		AIBaseURL:            "https://api.openai.com/v1",
		AIModel:              "gpt-4o-mini",
		AITimeoutSeconds:     30,
		StorageBackend:       BackendSQLite,
		LogLevel:             "info",
	}
}

// Load loads configuration from baseDir/config.json, then applies
// baseDir/.env and the process environment.
// Returns default config if neither file exists.
func Load(baseDir string) (*Config, error) {
	if err := LoadEnvFile(baseDir); err != nil {
		return nil, err
	}
	cfg, err := loadFile(filepath.Join(baseDir, FileName))
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads baseDir/.env into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadEnvFile(baseDir string) error {
	path := filepath.Join(baseDir, EnvFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overlays environment values onto cfg.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAIAPIKey)); v != "" {
		cfg.AIAPIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvRedisURL)); v != "" {
		cfg.RedisURL = v
		if cfg.StorageBackend == "" || cfg.StorageBackend == BackendSQLite {
			cfg.StorageBackend = BackendRedis
		}
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		OFFBaseURL:           pickString(overlay.OFFBaseURL, base.OFFBaseURL),
		LookupTimeoutSeconds: pickInt(overlay.LookupTimeoutSeconds, base.LookupTimeoutSeconds),
		AIBaseURL:            pickString(overlay.AIBaseURL, base.AIBaseURL),
		AIModel:              pickString(overlay.AIModel, base.AIModel),
		AITimeoutSeconds:     pickInt(overlay.AITimeoutSeconds, base.AITimeoutSeconds),
		AIAPIKey:             pickString(overlay.AIAPIKey, base.AIAPIKey),
		StorageBackend:       pickString(overlay.StorageBackend, base.StorageBackend),
		RedisURL:             pickString(overlay.RedisURL, base.RedisURL),
		LogLevel:             pickString(overlay.LogLevel, base.LogLevel),
		DBMaxOpenConns:       pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:       pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
