// Package config loads pkgstash configuration.
//
// Values come from, in increasing priority: built-in defaults, the YAML file
// at {Dir}/config.yaml (or the file given with --config), and PKGSTASH_*
// environment variables (PKGSTASH_REPO_PREFIX -> repo.prefix).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/blackwell-systems/pkgstash/internal/repo"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "PKGSTASH_"

// Backends accepted by the backend setting.
const (
	BackendLocal = "local"
	BackendPkcon = "pkcon"
)

// Config is the complete pkgstash configuration.
type Config struct {
	DBPath    string      `koanf:"db_path"`
	BackupDir string      `koanf:"backup_dir"`
	Backend   string      `koanf:"backend"`
	Pkcon     string      `koanf:"pkcon"`
	Repo      RepoConfig  `koanf:"repo"`
	Watch     WatchConfig `koanf:"watch"`
}

// RepoConfig controls managed repository naming.
type RepoConfig struct {
	Prefix      string `koanf:"prefix"`
	URLTemplate string `koanf:"url_template"`
}

// WatchConfig controls the auto-backup watcher.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Naming returns the repository naming rules.
func (c *Config) Naming() repo.Naming {
	return repo.Naming{Prefix: c.Repo.Prefix, URLTemplate: c.Repo.URLTemplate}
}

// Dir returns the pkgstash config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/pkgstash if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "pkgstash"), nil
}

// DataDir returns the directory holding the state database and backups.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".pkgstash"), nil
}

// Default returns the built-in configuration rooted at dataDir.
func Default(dataDir string) *Config {
	return &Config{
		DBPath:    filepath.Join(dataDir, "pkgstash.db"),
		BackupDir: filepath.Join(dataDir, "backups"),
		Backend:   BackendLocal,
		Pkcon:     "pkcon",
		Repo: RepoConfig{
			Prefix:      repo.DefaultPrefix,
			URLTemplate: repo.DefaultURLTemplate,
		},
		Watch: WatchConfig{Debounce: 5 * time.Second},
	}
}

// Load builds the configuration. An empty path means {Dir}/config.yaml;
// a missing default file is not an error, a missing explicit file is.
func Load(path string) (*Config, error) {
	dataDir, err := DataDir()
	if err != nil {
		return nil, err
	}
	cfg := Default(dataDir)

	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	if _, err := os.Stat(path); err == nil || explicit {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		for _, section := range []string{"repo", "watch"} {
			if strings.HasPrefix(s, section+"_") {
				return section + "." + s[len(section)+1:]
			}
		}
		return s
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformer), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values pkgstash cannot work with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal, BackendPkcon:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendLocal, BackendPkcon)
	}
	if c.Repo.Prefix == "" {
		return fmt.Errorf("repo.prefix cannot be empty")
	}
	if strings.Count(c.Repo.URLTemplate, "%s") != 1 {
		return fmt.Errorf("repo.url_template must contain exactly one %%s, got %q", c.Repo.URLTemplate)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce cannot be negative")
	}
	return nil
}
