// Package config loads the YAML configuration for a microdns-resolve
// process: the resolver list, per-query tunables, and the ingress rate
// limiter's thresholds.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHopLimit           = 64
	DefaultRateLimitPerSecond = 100
	DefaultRateLimitCooldown  = 60 * time.Second
	DefaultLogLevel           = "info"
)

// Config is the on-disk shape of a microdns-resolve configuration file.
type Config struct {
	Resolvers []string  `yaml:"resolvers"`
	HopLimit  int       `yaml:"hop_limit"`
	LogLevel  string    `yaml:"log_level"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Storage   Storage   `yaml:"storage"`
}

// RateLimit configures internal/security.RateLimiter.
type RateLimit struct {
	PerSecond int           `yaml:"per_second"`
	Cooldown  time.Duration `yaml:"cooldown"`
}

// Storage configures the socket's query slot table.
type Storage struct {
	// Capacity is the number of concurrent in-flight queries the slot
	// table can hold.
	Capacity int `yaml:"capacity"`
	// Owned, if true, lets the slot table grow past Capacity rather than
	// rejecting new queries with ExhaustedError once full.
	Owned bool `yaml:"owned"`
}

// Load reads and validates a configuration file at path, applying defaults
// for any field left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return New(cfg)
}

// New applies defaults to cfg and validates it, for callers that build a
// Config from flags or another in-memory source rather than a YAML file.
func New(cfg *Config) (*Config, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.HopLimit == 0 {
		c.HopLimit = DefaultHopLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.RateLimit.PerSecond == 0 {
		c.RateLimit.PerSecond = DefaultRateLimitPerSecond
	}
	if c.RateLimit.Cooldown == 0 {
		c.RateLimit.Cooldown = DefaultRateLimitCooldown
	}
	if c.Storage.Capacity == 0 {
		c.Storage.Capacity = 16
	}
}

func (c *Config) validate() error {
	if len(c.Resolvers) == 0 {
		return fmt.Errorf("at least one resolver must be configured")
	}
	if len(c.Resolvers) > 4 {
		return fmt.Errorf("at most 4 resolvers may be configured, got %d", len(c.Resolvers))
	}
	for _, r := range c.Resolvers {
		if net.ParseIP(r) == nil {
			return fmt.Errorf("resolver %q is not a valid IP address", r)
		}
	}
	if c.HopLimit < 0 || c.HopLimit > 255 {
		return fmt.Errorf("hop_limit must be between 0 and 255, got %d", c.HopLimit)
	}
	if c.Storage.Capacity < 1 {
		return fmt.Errorf("storage.capacity must be at least 1")
	}
	return nil
}

// ResolverIPs parses Resolvers into net.IP values. Load already validated
// each entry parses, so the error return exists only for callers that
// construct a Config by hand rather than through Load.
func (c *Config) ResolverIPs() ([]net.IP, error) {
	ips := make([]net.IP, 0, len(c.Resolvers))
	for _, r := range c.Resolvers {
		ip := net.ParseIP(r)
		if ip == nil {
			return nil, fmt.Errorf("resolver %q is not a valid IP address", r)
		}
		ips = append(ips, ip)
	}
	return ips, nil
}
