package media

import (
	"fmt"
	"os"
	"time"
)

// Config locates the ffmpeg binaries and the transcription endpoint.
type Config struct {
	FFmpegPath         string `toml:"ffmpeg_path"`
	FFprobePath        string `toml:"ffprobe_path"`
	TranscriptionURL   string `toml:"transcription_url"`
	TranscriptionModel string `toml:"transcription_model"`
	TranscriptionToken string `toml:"transcription_token"`
	Timeout            string `toml:"timeout"`
}

// Env maps config fields to environment variable names.
type Env struct {
	FFmpegPath         string
	FFprobePath        string
	TranscriptionURL   string
	TranscriptionModel string
	TranscriptionToken string
	Timeout            string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
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
	if overlay.FFmpegPath != "" {
		c.FFmpegPath = overlay.FFmpegPath
	}
	if overlay.FFprobePath != "" {
		c.FFprobePath = overlay.FFprobePath
	}
	if overlay.TranscriptionURL != "" {
		c.TranscriptionURL = overlay.TranscriptionURL
	}
	if overlay.TranscriptionModel != "" {
		c.TranscriptionModel = overlay.TranscriptionModel
	}
	if overlay.TranscriptionToken != "" {
		c.TranscriptionToken = overlay.TranscriptionToken
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.TranscriptionModel == "" {
		c.TranscriptionModel = "whisper-1"
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(dst *string, name string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(&c.FFmpegPath, env.FFmpegPath)
	set(&c.FFprobePath, env.FFprobePath)
	set(&c.TranscriptionURL, env.TranscriptionURL)
	set(&c.TranscriptionModel, env.TranscriptionModel)
	set(&c.TranscriptionToken, env.TranscriptionToken)
	set(&c.Timeout, env.Timeout)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
