package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"regionck/internal/regions"
)

// ConfigFileName is the project configuration looked up from the working
// directory upwards.
const ConfigFileName = "regionck.toml"

// ErrUnknownKey is wrapped by LoadConfig when the file has keys it does
// not understand.
var ErrUnknownKey = errors.New("unknown configuration key")

// Config is the decoded regionck.toml.
type Config struct {
	Run   RunConfig   `toml:"run"`
	Check CheckConfig `toml:"check"`
	Cache CacheConfig `toml:"cache"`
}

// RunConfig selects what `regionck check` runs when no paths are given.
type RunConfig struct {
	Paths []string `toml:"paths"`
	Jobs  int      `toml:"jobs"`
}

// CheckConfig tunes the region resolver.
type CheckConfig struct {
	SelfFallback   string `toml:"self_fallback"`
	MaxDepth       int    `toml:"max_depth"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

// CacheConfig controls the on-disk result cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// DefaultConfig is used when no regionck.toml exists.
func DefaultConfig() Config {
	return Config{
		Run:   RunConfig{Paths: []string{"."}},
		Check: CheckConfig{SelfFallback: "borrow", MaxDepth: regions.DefaultMaxDepth, MaxDiagnostics: 100},
		Cache: CacheConfig{Enabled: true},
	}
}

// LoadConfig parses path on top of DefaultConfig. Relative run paths and
// the cache directory are resolved against the file's directory.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	root := filepath.Dir(path)
	for i, p := range cfg.Run.Paths {
		if !filepath.IsAbs(p) {
			cfg.Run.Paths[i] = filepath.Join(root, filepath.FromSlash(p))
		}
	}
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(root, filepath.FromSlash(cfg.Cache.Dir))
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := regions.ParseSelfFallback(c.Check.SelfFallback); err != nil {
		return fmt.Errorf("[check].self_fallback: %w", err)
	}
	if c.Check.MaxDepth < 0 {
		return fmt.Errorf("[check].max_depth must not be negative, got %d", c.Check.MaxDepth)
	}
	if c.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("[check].max_diagnostics must not be negative, got %d", c.Check.MaxDiagnostics)
	}
	if c.Run.Jobs < 0 {
		return fmt.Errorf("[run].jobs must not be negative, got %d", c.Run.Jobs)
	}
	return nil
}

// RegionOptions converts the [check] section into resolver options.
func (c *Config) RegionOptions() (regions.Options, error) {
	fallback, err := regions.ParseSelfFallback(c.Check.SelfFallback)
	if err != nil {
		return regions.Options{}, err
	}
	return regions.Options{SelfFallback: fallback, MaxDepth: c.Check.MaxDepth}, nil
}

// FindConfig walks up from startDir to locate regionck.toml.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
