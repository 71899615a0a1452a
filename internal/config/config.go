// Package config holds the reviewbot configuration: the core bot settings plus
// the journal database and conversation tuning.
package config

import (
	"fmt"
	"time"

	coreconfig "github.com/m3rciful/reviewbot/core/config"
	coredatabase "github.com/m3rciful/reviewbot/core/database"
)

const defaultSweepIntervalSeconds = 60

// ReviewConfig tunes the conversation.
type ReviewConfig struct {
	// SessionTTLMinutes drops drafts idle for longer. The default 0 keeps
	// unfinished conversations pending until /start or /cancel.
	SessionTTLMinutes    int `yaml:"session_ttl_minutes" envconfig:"REVIEW_SESSION_TTL_MINUTES"`
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" envconfig:"REVIEW_SWEEP_INTERVAL_SECONDS"`
}

// SessionTTL returns the idle expiry as a duration.
func (r ReviewConfig) SessionTTL() time.Duration {
	return time.Duration(r.SessionTTLMinutes) * time.Minute
}

// SweepInterval returns how often expired drafts are purged; 0 when expiry is off.
func (r ReviewConfig) SweepInterval() time.Duration {
	if r.SessionTTLMinutes <= 0 {
		return 0
	}
	if r.SweepIntervalSeconds <= 0 {
		return defaultSweepIntervalSeconds * time.Second
	}
	return time.Duration(r.SweepIntervalSeconds) * time.Second
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Review   ReviewConfig        `yaml:"review"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads the YAML file at path (optional), overlays the environment and validates.
func Load(path string) (*Config, error) {
	cfg := Config{Review: ReviewConfig{
		SweepIntervalSeconds: defaultSweepIntervalSeconds,
	}}
	if err := coreconfig.ReadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section and applies core defaults.
func (c *Config) Validate() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Review.SessionTTLMinutes < 0 {
		return fmt.Errorf("review.session_ttl_minutes must be >= 0")
	}
	if c.Review.SweepIntervalSeconds < 0 {
		return fmt.Errorf("review.sweep_interval_seconds must be >= 0")
	}
	return nil
}
