// Package config loads Warden's TOML configuration. A base config.toml is
// overlaid by config.<WARDEN_ENV>.toml, then every section is finalized:
// defaults, WARDEN_* environment overrides, validation.
package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/warden/internal/extraction"
	"github.com/JaimeStill/warden/internal/media"
	"github.com/JaimeStill/warden/internal/moderation"
	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/pkg/database"
	"github.com/JaimeStill/warden/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvWardenEnv             = "WARDEN_ENV"
	EnvWardenConfig          = "WARDEN_CONFIG"
	EnvWardenShutdownTimeout = "WARDEN_SHUTDOWN_TIMEOUT"
	EnvWardenVersion         = "WARDEN_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "WARDEN_DB_HOST",
	Port:            "WARDEN_DB_PORT",
	Name:            "WARDEN_DB_NAME",
	User:            "WARDEN_DB_USER",
	Password:        "WARDEN_DB_PASSWORD",
	SSLMode:         "WARDEN_DB_SSL_MODE",
	MaxOpenConns:    "WARDEN_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "WARDEN_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "WARDEN_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "WARDEN_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "WARDEN_STORAGE_PROVIDER",
	ContainerName:    "WARDEN_STORAGE_CONTAINER_NAME",
	ConnectionString: "WARDEN_STORAGE_CONNECTION_STRING",
	Region:           "WARDEN_STORAGE_REGION",
	Endpoint:         "WARDEN_STORAGE_ENDPOINT",
	PublicBaseURL:    "WARDEN_STORAGE_PUBLIC_BASE_URL",
}

var moderationEnv = &moderation.Env{
	Engine:      "WARDEN_MODERATION_ENGINE",
	BannedTerms: "WARDEN_MODERATION_BANNED_TERMS",
	ReviewTerms: "WARDEN_MODERATION_REVIEW_TERMS",
}

var extractionEnv = &extraction.Env{
	FrameCount:   "WARDEN_EXTRACTION_FRAME_COUNT",
	TextLimit:    "WARDEN_EXTRACTION_TEXT_LIMIT",
	EPUBEnabled:  "WARDEN_EXTRACTION_EPUB_ENABLED",
	EPUBMaxFiles: "WARDEN_EXTRACTION_EPUB_MAX_FILES",
}

var mediaEnv = &media.Env{
	FFmpegPath:         "WARDEN_MEDIA_FFMPEG_PATH",
	FFprobePath:        "WARDEN_MEDIA_FFPROBE_PATH",
	TranscriptionURL:   "WARDEN_MEDIA_TRANSCRIPTION_URL",
	TranscriptionModel: "WARDEN_MEDIA_TRANSCRIPTION_MODEL",
	TranscriptionToken: "WARDEN_MEDIA_TRANSCRIPTION_TOKEN",
	Timeout:            "WARDEN_MEDIA_TIMEOUT",
}

var progressEnv = &progress.Env{
	BufferSize:        "WARDEN_PROGRESS_BUFFER_SIZE",
	HeartbeatInterval: "WARDEN_PROGRESS_HEARTBEAT_INTERVAL",
}

// Config is the root configuration for the Warden service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	API             APIConfig            `toml:"api"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Moderation      moderation.Config    `toml:"moderation"`
	Verification    VerificationConfig   `toml:"verification"`
	Progress        progress.Config      `toml:"progress"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// VerificationConfig groups the extraction limits and the media engines.
type VerificationConfig struct {
	Extraction extraction.Config `toml:"extraction"`
	Media      media.Config      `toml:"media"`
}

// Env returns the WARDEN_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvWardenEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Load reads the base config (WARDEN_CONFIG or config.toml, if present),
// applies any environment overlay, and finalizes all values.
func Load() (*Config, error) {
	base := BaseConfigFile
	if v := os.Getenv(EnvWardenConfig); v != "" {
		base = v
	}
	return LoadFile(base)
}

// LoadFile is Load with an explicit base path. A missing base file is not
// an error; defaults and environment variables fill every section.
func LoadFile(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// LoadPipeline reads path like LoadFile but finalizes only the sections
// the verification pipeline reads, so no database or storage is required.
func LoadPipeline(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.FinalizePipeline(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	mergeString(&c.Version, overlay.Version)
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Moderation.Merge(&overlay.Moderation)
	c.Verification.Extraction.Merge(&overlay.Verification.Extraction)
	c.Verification.Media.Merge(&overlay.Verification.Media)
	c.Progress.Merge(&overlay.Progress)
}

// Finalize runs every section's finalize phase.
func (c *Config) Finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	envString(&c.ShutdownTimeout, EnvWardenShutdownTimeout)
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	err := runSteps([]step{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"progress", func() error { return c.Progress.Finalize(progressEnv) }},
	})
	if err != nil {
		return err
	}
	return c.FinalizePipeline()
}

// FinalizePipeline finalizes the version, moderation, and verification
// sections. The agent section is only finalized when the agent engine is
// selected.
func (c *Config) FinalizePipeline() error {
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	envString(&c.Version, EnvWardenVersion)

	err := runSteps([]step{
		{"moderation", func() error { return c.Moderation.Finalize(moderationEnv) }},
		{"verification.extraction", func() error { return c.Verification.Extraction.Finalize(extractionEnv) }},
		{"verification.media", func() error { return c.Verification.Media.Finalize(mediaEnv) }},
	})
	if err != nil {
		return err
	}

	if c.Moderation.Engine == moderation.EngineAgent {
		if err := FinalizeAgent(&c.Agent); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
	}
	return nil
}

type step struct {
	name string
	fn   func() error
}

func runSteps(steps []step) error {
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func read(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvWardenEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
