package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/replywatch/replywatch/pkg/paths"
	"gopkg.in/yaml.v3"
)

const configFileName = "replywatch.yml"

var (
	defaultOnce sync.Once
	defaultCfg  *Config
	defaultErr  error
)

// DefaultPath returns the expected location of replywatch.yml.
func DefaultPath() string {
	dir := paths.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, configFileName)
}

// Load reads, defaults, and validates a config file. A missing file is
// not an error: the returned config carries defaults only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.SetDefaults()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	return cfg, nil
}

// LoadDefault loads replywatch.yml from the XDG config dir, caching the
// result for the process lifetime.
func LoadDefault() (*Config, error) {
	defaultOnce.Do(func() {
		defaultCfg, defaultErr = Load(DefaultPath())
	})
	return defaultCfg, defaultErr
}
