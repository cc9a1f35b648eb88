// Package configfile loads per-project configuration from .skein/config.yaml.
//
// The project root is found by walking up from the working directory until
// a .skein directory appears, the same way git finds its repository.
// Settings can be overridden with SKEIN_* environment variables.
package configfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/skein/internal/store"
)

// DirName is the per-project store directory.
const DirName = ".skein"

// ConfigName is the config file inside DirName.
const ConfigName = "config.yaml"

// ErrNoProject is returned when no .skein directory exists here or above.
var ErrNoProject = errors.New("not in a skein project (run 'sk init')")

// Config is the resolved per-project configuration.
type Config struct {
	// Dir is the absolute path of the .skein directory.
	Dir string `yaml:"-"`

	// Active and Archive are the log file names, relative to Dir.
	Active  string `yaml:"active"`
	Archive string `yaml:"archive"`

	// Limit is the default result cap for list queries.
	Limit int `yaml:"limit"`

	// Actor identifies who is mutating, recorded in task meta on create.
	Actor string `yaml:"actor,omitempty"`

	// ForceDelete makes delete skip the incomplete-dependents check by
	// default, as if --force were always passed.
	ForceDelete bool `yaml:"force_delete,omitempty"`
}

func defaults() *Config {
	return &Config{
		Active:  store.ActiveName,
		Archive: store.ArchiveName,
		Limit:   10,
	}
}

// Load resolves configuration for the project containing startDir.
func Load(startDir string) (*Config, error) {
	dir, err := findProjectDir(startDir)
	if err != nil {
		return nil, err
	}
	return loadFrom(dir)
}

func loadFrom(dir string) (*Config, error) {
	cfg := defaults()
	cfg.Dir = dir

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, ConfigName))
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SKEIN")
	v.AutomaticEnv()
	v.SetDefault("active", cfg.Active)
	v.SetDefault("archive", cfg.Archive)
	v.SetDefault("limit", cfg.Limit)
	v.SetDefault("actor", "")
	v.SetDefault("force_delete", false)

	// A missing config file means defaults; anything else is real.
	if _, statErr := os.Stat(v.ConfigFileUsed()); statErr == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg.Active = v.GetString("active")
	cfg.Archive = v.GetString("archive")
	cfg.Limit = v.GetInt("limit")
	cfg.Actor = v.GetString("actor")
	cfg.ForceDelete = v.GetBool("force_delete")
	if cfg.Limit <= 0 {
		cfg.Limit = defaults().Limit
	}
	return cfg, nil
}

// Paths returns the log file layout for this project.
func (c *Config) Paths() store.Paths {
	return store.Paths{
		Active:  filepath.Join(c.Dir, c.Active),
		Archive: filepath.Join(c.Dir, c.Archive),
		Lock:    filepath.Join(c.Dir, store.LockName),
	}
}

// Init creates the .skein directory and a default config.yaml under dir.
// Running init in an existing project is a no-op.
func Init(dir string) (*Config, error) {
	skeinDir := filepath.Join(dir, DirName)
	if err := os.MkdirAll(skeinDir, 0o755); err != nil {
		return nil, fmt.Errorf("initializing project: %w", err)
	}

	configPath := filepath.Join(skeinDir, ConfigName)
	if _, err := os.Stat(configPath); err == nil {
		return loadFrom(skeinDir)
	}

	cfg := defaults()
	cfg.Dir = skeinDir
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing project: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("initializing project: %w", err)
	}
	return cfg, nil
}

// findProjectDir walks up from start looking for a .skein directory.
func findProjectDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}
