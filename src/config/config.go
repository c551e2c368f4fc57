// Package config loads operator-tunable settings from an optional YAML
// file. Command-line flags override file values; a missing file yields the
// defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file unless told
// otherwise.
const DefaultPath = "/etc/virt-otg/config.yaml"

// Config holds everything an operator may want to tune.
type Config struct {
	LogFile          string `yaml:"log_file"`
	VirshBin         string `yaml:"virsh_bin"`
	ConnectURI       string `yaml:"connect_uri"`
	PollIntervalSec  int    `yaml:"poll_interval_sec"`
	CommitTimeoutSec int    `yaml:"commit_timeout_sec"`
	StartTimeoutSec  int    `yaml:"start_timeout_sec"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogFile:          "/var/log/virt-otg.log",
		VirshBin:         "virsh",
		PollIntervalSec:  1,
		CommitTimeoutSec: 60,
		StartTimeoutSec:  60,
	}
}

// Load reads path when it exists and overlays it on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.PollIntervalSec <= 0 || cfg.CommitTimeoutSec <= 0 || cfg.StartTimeoutSec <= 0 {
		return cfg, fmt.Errorf("config %s: intervals and timeouts must be positive", path)
	}
	return cfg, nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

func (c Config) CommitTimeout() time.Duration {
	return time.Duration(c.CommitTimeoutSec) * time.Second
}

func (c Config) StartTimeout() time.Duration {
	return time.Duration(c.StartTimeoutSec) * time.Second
}
