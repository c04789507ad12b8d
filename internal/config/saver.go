package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/khanglvm/course-hub/internal/logging"
)

// configFileMode keeps the API key readable by the owner only.
const configFileMode = 0o600

// Save validates cfg and writes it to path as YAML. The previous file, if
// any, is kept as path.bak and the new content replaces it atomically.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Fix the listed values and try again",
			Err:     err,
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := ensureWritable(path); err != nil {
		return err
	}

	if err := backup(path); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("failed to create config backup")
	}

	return atomicWrite(path, data)
}

// backup copies an existing config to path.bak. A missing file is not an
// error.
func backup(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path+".bak", data, configFileMode)
}

// atomicWrite writes data to a temp file in the target directory and
// renames it over path.
func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Chmod(configFileMode); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ensureWritable fails early with a PermissionError when neither the
// directory nor an existing file can be written. A missing directory is
// fine; atomicWrite creates it.
func ensureWritable(path string) error {
	dir := filepath.Dir(path)

	if _, err := os.Stat(dir); err == nil {
		probe, err := os.CreateTemp(dir, ".write-test-*")
		if err != nil {
			e := newPermissionError(dir, "write", err)
			e.Details = "Cannot write to config directory"
			return e
		}
		probe.Close()
		os.Remove(probe.Name())
	}

	if _, err := os.Stat(path); err == nil {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			e := newPermissionError(path, "write", err)
			e.Details = "Config file is read-only"
			return e
		}
		f.Close()
	}

	return nil
}
