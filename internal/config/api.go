package config

import (
	"fmt"

	"github.com/JaimeStill/warden/pkg/formatting"
	"github.com/JaimeStill/warden/pkg/middleware"
)

const (
	EnvAPIBasePath      = "WARDEN_API_BASE_PATH"
	EnvAPIMaxUploadSize = "WARDEN_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "WARDEN_CORS_ENABLED",
	Origins:          "WARDEN_CORS_ORIGINS",
	AllowedMethods:   "WARDEN_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "WARDEN_CORS_ALLOWED_HEADERS",
	AllowCredentials: "WARDEN_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "WARDEN_CORS_MAX_AGE",
}

// APIConfig holds API routing, upload limits, and CORS settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes. Finalize guarantees it parses.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "512MB"
	}
	envString(&c.BasePath, EnvAPIBasePath)
	envString(&c.MaxUploadSize, EnvAPIMaxUploadSize)

	if size, err := formatting.ParseBytes(c.MaxUploadSize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_upload_size %q", c.MaxUploadSize)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *APIConfig) Merge(overlay *APIConfig) {
	mergeString(&c.BasePath, overlay.BasePath)
	mergeString(&c.MaxUploadSize, overlay.MaxUploadSize)
	c.CORS.Merge(&overlay.CORS)
}
