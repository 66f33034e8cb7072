package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/pantry/internal/errors"
)

// isolateEnv clears the pantry variables for the test and restores them afterwards.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAIAPIKey, EnvRedisURL, EnvLogLevel} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := DefaultConfig()
	if cfg.OFFBaseURL != want.OFFBaseURL {
		t.Errorf("OFFBaseURL = %q, want %q", cfg.OFFBaseURL, want.OFFBaseURL)
	}
	if cfg.StorageBackend != BackendSQLite {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, BackendSQLite)
	}
	if cfg.AIAPIKey != "" {
		t.Errorf("AIAPIKey = %q, want empty", cfg.AIAPIKey)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	isolateEnv(t)
	tmpDir := t.TempDir()

	data := `{"off_base_url": "http://localhost:9000", "lookup_timeout_seconds": 3, "ai_model": "llama3"}`
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(data), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OFFBaseURL != "http://localhost:9000" {
		t.Errorf("OFFBaseURL = %q", cfg.OFFBaseURL)
	}
	if cfg.LookupTimeoutSeconds != 3 {
		t.Errorf("LookupTimeoutSeconds = %d, want 3", cfg.LookupTimeoutSeconds)
	}
	if cfg.AIModel != "llama3" {
		t.Errorf("AIModel = %q, want llama3", cfg.AIModel)
	}
	if cfg.AIBaseURL != DefaultConfig().AIBaseURL {
		t.Errorf("AIBaseURL = %q, want default", cfg.AIBaseURL)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	isolateEnv(t)
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_APIKeyIgnoredInFile(t *testing.T) {
	isolateEnv(t)
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(`{"AIAPIKey": "leak"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AIAPIKey != "" {
		t.Errorf("AIAPIKey = %q, want empty", cfg.AIAPIKey)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown backend", data: `{"storage_backend": "mongo"}`},
		{name: "redis without url", data: `{"storage_backend": "redis"}`},
		{name: "bad log level", data: `{"log_level": "loud"}`},
		{name: "bad url", data: `{"off_base_url": "not a url"}`},
		{name: "negative timeout", data: `{"ai_timeout_seconds": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			tmpDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(tt.data), 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			_, err := Load(tmpDir)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("Load() error = %v, want INVALID_REQUEST", err)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	isolateEnv(t)
	tmpDir := t.TempDir()

	env := "PANTRY_AI_API_KEY=sk-test\nPANTRY_LOG_LEVEL=DEBUG\n"
	if err := os.WriteFile(filepath.Join(tmpDir, EnvFileName), []byte(env), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AIAPIKey != "sk-test" {
		t.Errorf("AIAPIKey = %q, want sk-test", cfg.AIAPIKey)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_EnvFileDoesNotOverrideProcessEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvAIAPIKey, "from-process")
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, EnvFileName), []byte("PANTRY_AI_API_KEY=from-file\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AIAPIKey != "from-process" {
		t.Errorf("AIAPIKey = %q, want from-process", cfg.AIAPIKey)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvRedisURL: "redis://localhost:6379/0",
		EnvLogLevel: "Warn",
	}
	cfg := DefaultConfig()

	ApplyEnv(cfg, func(k string) string { return env[k] })

	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.StorageBackend != BackendRedis {
		t.Errorf("StorageBackend = %q, want redis when a redis url is provided", cfg.StorageBackend)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	isolateEnv(t)
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(`{"disabled_tools": ["recipe_delete", "idea_delete"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "recipe_delete" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "recipe_delete")
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{AIModel: "a", DBMaxOpenConns: 5}
	overlay := &Config{AIModel: "b"}

	result := Merge(base, overlay)

	if result.AIModel != "b" {
		t.Errorf("AIModel = %q, want b (overlay)", result.AIModel)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"recipe_delete", "idea_delete"}}
	overlay := &Config{DisabledTools: []string{" idea_delete ", "builder_clear"}}

	result := Merge(base, overlay)

	want := []string{"recipe_delete", "idea_delete", "builder_clear"}
	if len(result.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", result.DisabledTools, want)
	}
	for i := range want {
		if result.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, result.DisabledTools[i], want[i])
		}
	}
}

func TestMerge_EmptyArrays(t *testing.T) {
	result := Merge(&Config{}, &Config{DisabledTypes: []string{"  "}})
	if result.DisabledTypes != nil {
		t.Errorf("DisabledTypes = %v, want nil", result.DisabledTypes)
	}
}
