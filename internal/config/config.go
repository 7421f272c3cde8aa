// Package config holds abpcore's on-disk configuration: filter list
// sources, HTTP client tuning, and engine sizing knobs, decoded from TOML
// with viper the way the teacher's cmd package does.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Config is the top-level abpcore configuration document.
type Config struct {
	HTTP   HTTPConfig   `mapstructure:"http"`
	Engine EngineConfig `mapstructure:"engine"`
	Lists  []FilterList `mapstructure:"lists"`
}

// HTTPConfig tunes the fetcher's client.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// EngineConfig tunes Engine sizing.
type EngineConfig struct {
	CacheSize    int `mapstructure:"cache_size"`
	WarmPoolSize int `mapstructure:"warm_pool_size"`
}

// FilterList names one filter list source, local or remote.
type FilterList struct {
	Name    string `mapstructure:"name"`
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// EnabledLists returns only the enabled filter lists.
func (c *Config) EnabledLists() []FilterList {
	var enabled []FilterList
	for _, l := range c.Lists {
		if l.Enabled {
			enabled = append(enabled, l)
		}
	}
	return enabled
}

// Load reads and decodes the config file at path from fs. fs is an
// afero.Fs rather than the real filesystem so config loading can be
// exercised against an in-memory tree in tests.
func Load(fs afero.Fs, path string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.retries", 3)
	v.SetDefault("engine.cache_size", 1000)
	v.SetDefault("engine.warm_pool_size", 0)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return &cfg, nil
}

// defaultTOML is written by "abpcore init".
const defaultTOML = `# abpcore configuration

[http]
timeout = "30s"
retries = 3

[engine]
cache_size = 1000
warm_pool_size = 0

[[lists]]
name = "easylist"
url = "https://easylist.to/easylist/easylist.txt"
enabled = true

[[lists]]
name = "easyprivacy"
url = "https://easylist.to/easylist/easyprivacy.txt"
enabled = true
`

// WriteDefault writes a default config file to path on fs, refusing to
// overwrite an existing file.
func WriteDefault(fs afero.Fs, path string) error {
	if exists, err := afero.Exists(fs, path); err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	} else if exists {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := afero.WriteFile(fs, path, []byte(defaultTOML), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
