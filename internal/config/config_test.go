package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/khanglvm/course-hub/internal/llm"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Recommender.Dimension != 32 {
		t.Errorf("Default Dimension should be 32, got %d", cfg.Recommender.Dimension)
	}
	if cfg.Recommender.Epochs != 100 {
		t.Errorf("Default Epochs should be 100, got %d", cfg.Recommender.Epochs)
	}
	if cfg.Recommender.TopK != 3 {
		t.Errorf("Default TopK should be 3, got %d", cfg.Recommender.TopK)
	}
	if cfg.LLM.Model != llm.DefaultModel {
		t.Errorf("Default model should be %s, got %s", llm.DefaultModel, cfg.LLM.Model)
	}
	if !cfg.Database.SeedOnInit || !cfg.History.Enabled {
		t.Error("seeding and history should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLLMConfig(t *testing.T) {
	cfg := NewConfig().LLM
	cfg.APIKey = "sk-test"

	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Timeout())
	}
	cc := cfg.ClientConfig()
	if cc.APIKey != "sk-test" || cc.MaxRetries != 3 || cc.BaseURL != llm.DefaultBaseURL {
		t.Errorf("unexpected client config: %+v", cc)
	}
}

func TestRedacted(t *testing.T) {
	cfg := NewConfig()
	cfg.LLM.APIKey = "sk-secret"

	if got := cfg.Redacted().LLM.APIKey; got != "****" {
		t.Errorf("Redacted API key = %q", got)
	}
	if cfg.LLM.APIKey != "sk-secret" {
		t.Error("Redacted must not modify the original")
	}
	if NewConfig().Redacted().LLM.APIKey != "" {
		t.Error("empty key should stay empty")
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Path = "/tmp/x.db"
	if p, _ := cfg.DatabasePath(); p != "/tmp/x.db" {
		t.Errorf("DatabasePath = %q", p)
	}

	cfg.Database.Path = ""
	p, err := cfg.DatabasePath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !strings.HasSuffix(p, filepath.Join(".course-hub", "courses.db")) {
		t.Errorf("default DatabasePath = %q", p)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero dimension", func(c *Config) { c.Recommender.Dimension = 0 }, "Recommender.Dimension"},
		{"zero epochs", func(c *Config) { c.Recommender.Epochs = 0 }, "Recommender.Epochs"},
		{"zero top k", func(c *Config) { c.Recommender.TopK = 0 }, "Recommender.TopK"},
		{"zero timeout", func(c *Config) { c.LLM.TimeoutSeconds = 0 }, "LLM.TimeoutSeconds"},
		{"bad base url", func(c *Config) { c.LLM.BaseURL = "not a url" }, "LLM.BaseURL"},
		{"template without placeholder", func(c *Config) { c.LLM.PromptTemplate = "no placeholder" }, "LLM.PromptTemplate"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "Log.Level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "Log.Format"},
		{"bad addr", func(c *Config) { c.Server.Addr = "localhost" }, "Server.Addr"},
		{"negative retention", func(c *Config) { c.History.RetentionDays = -1 }, "History.RetentionDays"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestHistoryRetention(t *testing.T) {
	h := HistoryConfig{RetentionDays: 2}
	if h.Retention() != 48*time.Hour {
		t.Errorf("Retention() = %v, want 48h", h.Retention())
	}
}

func TestConfigErrors(t *testing.T) {
	var err error = &ConfigNotFoundError{Path: "/x", Hint: "run init"}
	if !strings.Contains(err.Error(), "config file not found: /x") || !strings.Contains(err.Error(), "run init") {
		t.Errorf("unexpected message: %s", err)
	}

	err = &PermissionError{Path: "/x", Op: "write", Fix: "chmod", Details: "read-only"}
	if !strings.Contains(err.Error(), "cannot write") || !strings.Contains(err.Error(), "read-only") {
		t.Errorf("unexpected message: %s", err)
	}

	err = &InvalidConfigError{Path: "/x", Message: "bad", Hint: "fix it"}
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) || invalid.Message != "bad" {
		t.Error("InvalidConfigError should be matchable with errors.As")
	}
	if !strings.Contains(err.Error(), "💡 fix it") {
		t.Errorf("hint missing: %s", err)
	}
}

func TestConfigErrorsMatchFS(t *testing.T) {
	if !errors.Is(&ConfigNotFoundError{Path: "/x"}, fs.ErrNotExist) {
		t.Error("ConfigNotFoundError should match fs.ErrNotExist")
	}
	if !errors.Is(newPermissionError("/x", "write", nil), fs.ErrPermission) {
		t.Error("PermissionError should match fs.ErrPermission")
	}

	cause := errors.New("yaml: line 3")
	if !errors.Is(&InvalidConfigError{Path: "/x", Err: cause}, cause) {
		t.Error("InvalidConfigError should unwrap to its cause")
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	p, err := GetDefaultConfigPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if filepath.Base(p) != "config.yaml" || filepath.Base(filepath.Dir(p)) != ".course-hub" {
		t.Errorf("unexpected default path %q", p)
	}
}
