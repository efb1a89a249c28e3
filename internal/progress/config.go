package progress

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds push channel settings.
type Config struct {
	BufferSize        int    `toml:"buffer_size"`
	HeartbeatInterval string `toml:"heartbeat_interval"`
}

// Env maps config fields to environment variable names.
type Env struct {
	BufferSize        string
	HeartbeatInterval string
}

// HeartbeatDuration returns HeartbeatInterval as a time.Duration.
func (c *Config) HeartbeatDuration() time.Duration {
	d, _ := time.ParseDuration(c.HeartbeatInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BufferSize != 0 {
		c.BufferSize = overlay.BufferSize
	}
	if overlay.HeartbeatInterval != "" {
		c.HeartbeatInterval = overlay.HeartbeatInterval
	}
}

func (c *Config) loadDefaults() {
	if c.BufferSize == 0 {
		c.BufferSize = 16
	}
	if c.HeartbeatInterval == "" {
		c.HeartbeatInterval = "15s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BufferSize != "" {
		if v := os.Getenv(env.BufferSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.BufferSize = n
			}
		}
	}
	if env.HeartbeatInterval != "" {
		if v := os.Getenv(env.HeartbeatInterval); v != "" {
			c.HeartbeatInterval = v
		}
	}
}

func (c *Config) validate() error {
	if c.BufferSize < 1 {
		return fmt.Errorf("buffer_size must be positive")
	}
	d, err := time.ParseDuration(c.HeartbeatInterval)
	if err != nil {
		return fmt.Errorf("invalid heartbeat_interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("heartbeat_interval must be positive")
	}
	return nil
}
