package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Runtime holds the settings an operator may change without rebuilding.
// Sources, later ones winning: built-in defaults, the YAML file, MEDREMINDER_* env vars.
type Runtime struct {
	DataDir          string        `koanf:"data_dir"`
	Storage          string        `koanf:"storage"`
	Port             string        `koanf:"port"`
	DispatchInterval time.Duration `koanf:"dispatch_interval"`
	RefreshInterval  time.Duration `koanf:"refresh_interval"`
	LogLevel         string        `koanf:"log_level"`
}

// DefaultRuntime returns the built-in defaults as a koanf map.
func DefaultRuntime() map[string]interface{} {
	return map[string]interface{}{
		"data_dir":          "",
		"storage":           DefaultStorage,
		"port":              DefaultPort,
		"dispatch_interval": DefaultDispatchInterval.String(),
		"refresh_interval":  DefaultRefreshInterval.String(),
		"log_level":         DefaultLogLevel,
	}
}

// Load reads the runtime configuration. A missing file at path is not an error.
func Load(path string) (*Runtime, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(DefaultRuntime(), "."), nil); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigLoad, err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("%s: %w", ErrConfigLoad, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigLoad, err)
	}

	var rt Runtime
	if err := k.Unmarshal("", &rt); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigLoad, err)
	}
	if err := rt.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigLoad, err)
	}
	return &rt, nil
}

// Validate rejects values the app cannot run with.
func (r *Runtime) Validate() error {
	if r.DispatchInterval <= 0 || r.RefreshInterval <= 0 {
		return errors.New(ErrDispatchInterval)
	}
	if r.Port == "" {
		return errors.New(ErrPortRequired)
	}
	switch r.Storage {
	case StorageBolt, StoragePreferences, StorageMemory:
	default:
		return fmt.Errorf("%s: %q", ErrStorageBackend, r.Storage)
	}
	if _, err := r.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (r *Runtime) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(r.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%s: %q", ErrLogLevel, r.LogLevel)
	}
	return lvl, nil
}

// ResolveDataDir returns DataDir, defaulting to a per-user config directory,
// and makes sure it exists.
func (r *Runtime) ResolveDataDir() (string, error) {
	dir := r.DataDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("%s: %w", ErrDataDir, err)
		}
		dir = filepath.Join(base, AppID)
	}
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", ErrDataDir, err)
	}
	return dir, nil
}
