package extraction

import (
	"fmt"
	"os"
	"strconv"
)

const (
	DefaultFrameCount   = 3
	DefaultTextLimit    = 10000
	DefaultEPUBMaxFiles = 10
)

// Config holds extraction limits.
type Config struct {
	FrameCount   int   `toml:"frame_count"`
	TextLimit    int   `toml:"text_limit"`
	EPUBEnabled  *bool `toml:"epub_enabled"`
	EPUBMaxFiles int   `toml:"epub_max_files"`
}

// Env maps config fields to environment variable names.
type Env struct {
	FrameCount   string
	TextLimit    string
	EPUBEnabled  string
	EPUBMaxFiles string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// EPUB reports whether EPUB reading is enabled. Unset means disabled.
func (c *Config) EPUB() bool {
	return c.EPUBEnabled != nil && *c.EPUBEnabled
}

// Merge overwrites non-zero fields from overlay. epub_enabled applies
// whenever the overlay sets it, including an explicit false.
func (c *Config) Merge(overlay *Config) {
	if overlay.EPUBEnabled != nil {
		c.EPUBEnabled = overlay.EPUBEnabled
	}
	if overlay.FrameCount != 0 {
		c.FrameCount = overlay.FrameCount
	}
	if overlay.TextLimit != 0 {
		c.TextLimit = overlay.TextLimit
	}
	if overlay.EPUBMaxFiles != 0 {
		c.EPUBMaxFiles = overlay.EPUBMaxFiles
	}
}

func (c *Config) loadDefaults() {
	if c.FrameCount == 0 {
		c.FrameCount = DefaultFrameCount
	}
	if c.TextLimit == 0 {
		c.TextLimit = DefaultTextLimit
	}
	if c.EPUBMaxFiles == 0 {
		c.EPUBMaxFiles = DefaultEPUBMaxFiles
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := getenv(env.FrameCount); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FrameCount = n
		}
	}
	if v := getenv(env.TextLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TextLimit = n
		}
	}
	if v := getenv(env.EPUBEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EPUBEnabled = &b
		}
	}
	if v := getenv(env.EPUBMaxFiles); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.EPUBMaxFiles = n
		}
	}
}

func (c *Config) validate() error {
	if c.FrameCount < 1 {
		return fmt.Errorf("frame_count must be positive")
	}
	if c.TextLimit < 1 {
		return fmt.Errorf("text_limit must be positive")
	}
	if c.EPUBMaxFiles < 1 {
		return fmt.Errorf("epub_max_files must be positive")
	}
	return nil
}

func getenv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
