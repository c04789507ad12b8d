package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COURSE_HUB_"

// Load reads configuration layered as defaults, file, environment.
//
// An empty path means the default location; a missing default file is not
// an error. An explicit path that does not exist is a ConfigNotFoundError.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(NewConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := loadFile(k, path, explicit); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("failed to decode configuration: %v", err),
			Hint:    "Check value types in the config file and COURSE_HUB_* variables",
			Err:     err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Run 'course-hub config show' to see the effective values",
			Err:     err,
		}
	}

	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if !explicit {
				return nil
			}
			return &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'course-hub config init' to create configuration",
			}
		}
		return fmt.Errorf("failed to access config: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if isPermission(err) {
			return newPermissionError(path, "read", err)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	f.Close()

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("YAML parse error: %v", err),
			Hint:    "Restore from .bak file if available",
			Err:     err,
		}
	}
	return nil
}

// envKey maps COURSE_HUB_LLM_API_KEY to llm.api_key: the first segment after
// the prefix names the section, the rest is the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// into the process environment. Missing files are skipped and variables
// that are already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
