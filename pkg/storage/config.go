package storage

import (
	"fmt"
	"os"
)

// Provider names a blob storage backend.
type Provider string

const (
	ProviderAzure Provider = "azure"
	ProviderS3    Provider = "s3"
)

// Config holds blob storage connection parameters. ContainerName is the
// Azure container or the S3 bucket depending on Provider.
type Config struct {
	Provider         Provider `toml:"provider"`
	ContainerName    string   `toml:"container_name"`
	ConnectionString string   `toml:"connection_string"`
	Region           string   `toml:"region"`
	Endpoint         string   `toml:"endpoint"`
	PublicBaseURL    string   `toml:"public_base_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	ContainerName    string
	ConnectionString string
	Region           string
	Endpoint         string
	PublicBaseURL    string
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.PublicBaseURL != "" {
		c.PublicBaseURL = overlay.PublicBaseURL
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.ContainerName == "" {
		c.ContainerName = "submissions"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := lookup(env.Provider); v != "" {
		c.Provider = Provider(v)
	}
	if v := lookup(env.ContainerName); v != "" {
		c.ContainerName = v
	}
	if v := lookup(env.ConnectionString); v != "" {
		c.ConnectionString = v
	}
	if v := lookup(env.Region); v != "" {
		c.Region = v
	}
	if v := lookup(env.Endpoint); v != "" {
		c.Endpoint = v
	}
	if v := lookup(env.PublicBaseURL); v != "" {
		c.PublicBaseURL = v
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}

	switch c.Provider {
	case ProviderAzure:
		if c.ConnectionString == "" {
			return fmt.Errorf("connection_string required for azure provider")
		}
	case ProviderS3:
		if c.Region == "" {
			return fmt.Errorf("region required for s3 provider")
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}

	return nil
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
