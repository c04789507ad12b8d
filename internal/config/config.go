/*
Package config handles loading and saving course-hub configuration.

Configuration is layered with koanf: built-in defaults, then the YAML file
(~/.course-hub/config.yaml unless --config names another), then environment
variables prefixed with COURSE_HUB_. A .env file in the working directory is
loaded into the environment first, without overriding variables that are
already set.

Schema:

	database:
	  path: ~/.course-hub/courses.db
	  seed_on_init: true
	recommender:
	  dimension: 32
	  epochs: 100
	  top_k: 3
	  seed: 1
	  log_every: 10
	llm:
	  base_url: https://api.openai-proxy.org/v1
	  api_key: ""
	  model: gpt-4o-mini
	  system_prompt: You are a helpful assistant.
	  prompt_template: "...%s"
	  timeout_seconds: 30
	  max_retries: 3
	log:
	  level: info
	  format: console
	server:
	  addr: 127.0.0.1:8080
	history:
	  enabled: true
	  retention_days: 30

Environment variables map onto keys by section, so COURSE_HUB_LLM_API_KEY
sets llm.api_key and COURSE_HUB_RECOMMENDER_TOP_K sets recommender.top_k.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/khanglvm/course-hub/internal/llm"
)

// Config represents the root configuration structure.
type Config struct {
	Database    DatabaseConfig    `koanf:"database" yaml:"database"`
	Recommender RecommenderConfig `koanf:"recommender" yaml:"recommender"`
	LLM         LLMConfig         `koanf:"llm" yaml:"llm"`
	Log         LogConfig         `koanf:"log" yaml:"log"`
	Server      ServerConfig      `koanf:"server" yaml:"server"`
	History     HistoryConfig     `koanf:"history" yaml:"history"`
}

// DatabaseConfig locates the schedule database.
type DatabaseConfig struct {
	// Path is the SQLite file. Empty means ~/.course-hub/courses.db.
	Path string `koanf:"path" yaml:"path"`

	// SeedOnInit replaces the table with the built-in timetable every time a
	// command starts the service, deleting any other rows. `init` always
	// reseeds regardless of this setting.
	SeedOnInit bool `koanf:"seed_on_init" yaml:"seed_on_init"`
}

// RecommenderConfig tunes the course recommender.
type RecommenderConfig struct {
	Dimension int    `koanf:"dimension" yaml:"dimension" validate:"gt=0,lte=1024"`
	Epochs    int    `koanf:"epochs" yaml:"epochs" validate:"gt=0"`
	TopK      int    `koanf:"top_k" yaml:"top_k" validate:"gt=0"`
	Seed      uint64 `koanf:"seed" yaml:"seed"`
	LogEvery  int    `koanf:"log_every" yaml:"log_every" validate:"gte=0"`
}

// LLMConfig configures the chat-completions client.
type LLMConfig struct {
	BaseURL        string `koanf:"base_url" yaml:"base_url" validate:"required,url"`
	APIKey         string `koanf:"api_key" yaml:"api_key"`
	Model          string `koanf:"model" yaml:"model" validate:"required"`
	SystemPrompt   string `koanf:"system_prompt" yaml:"system_prompt"`
	PromptTemplate string `koanf:"prompt_template" yaml:"prompt_template" validate:"required,contains=%s"`
	TimeoutSeconds int    `koanf:"timeout_seconds" yaml:"timeout_seconds" validate:"gt=0"`
	MaxRetries     int    `koanf:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`
}

// Timeout returns TimeoutSeconds as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ClientConfig converts the section into llm.Config.
func (c LLMConfig) ClientConfig() llm.Config {
	return llm.Config{
		BaseURL:    c.BaseURL,
		APIKey:     c.APIKey,
		Model:      c.Model,
		Timeout:    c.Timeout(),
		MaxRetries: c.MaxRetries,
	}
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=trace debug info warn warning error disabled off"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=console json"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `koanf:"addr" yaml:"addr" validate:"required,hostname_port"`
}

// HistoryConfig configures query history tracking.
type HistoryConfig struct {
	Enabled       bool `koanf:"enabled" yaml:"enabled"`
	RetentionDays int  `koanf:"retention_days" yaml:"retention_days" validate:"gte=0"`
}

// Retention returns RetentionDays as a duration. Zero means keep forever.
func (c HistoryConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			SeedOnInit: true,
		},
		Recommender: RecommenderConfig{
			Dimension: 32,
			Epochs:    100,
			TopK:      3,
			Seed:      1,
			LogEvery:  10,
		},
		LLM: LLMConfig{
			BaseURL:        llm.DefaultBaseURL,
			Model:          llm.DefaultModel,
			SystemPrompt:   llm.DefaultSystemPrompt,
			PromptTemplate: llm.DefaultPromptTemplate,
			TimeoutSeconds: 30,
			MaxRetries:     3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
	}
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "****"
	}
	return c
}

// DatabasePath returns the configured database path, falling back to
// ~/.course-hub/courses.db.
func (c Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "courses.db"), nil
}

// HomeDir returns ~/.course-hub.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".course-hub"), nil
}

// GetDefaultConfigPath returns the path to ~/.course-hub/config.yaml
func GetDefaultConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
