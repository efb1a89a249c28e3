package moderation

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EngineAgent  = "agent"
	EnginePolicy = "policy"
)

// Config selects and tunes the decision engine.
type Config struct {
	Engine      string   `toml:"engine"`
	BannedTerms []string `toml:"banned_terms"`
	ReviewTerms []string `toml:"review_terms"`
}

// Env maps config fields to environment variable names. Term lists are
// comma separated.
type Env struct {
	Engine      string
	BannedTerms string
	ReviewTerms string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.Engine == "" {
		c.Engine = EnginePolicy
	}
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Engine != "" {
		c.Engine = overlay.Engine
	}
	if overlay.BannedTerms != nil {
		c.BannedTerms = overlay.BannedTerms
	}
	if overlay.ReviewTerms != nil {
		c.ReviewTerms = overlay.ReviewTerms
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Engine != "" {
		if v := os.Getenv(env.Engine); v != "" {
			c.Engine = v
		}
	}
	if env.BannedTerms != "" {
		if v := os.Getenv(env.BannedTerms); v != "" {
			c.BannedTerms = splitTerms(v)
		}
	}
	if env.ReviewTerms != "" {
		if v := os.Getenv(env.ReviewTerms); v != "" {
			c.ReviewTerms = splitTerms(v)
		}
	}
}

func splitTerms(v string) []string {
	var terms []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

func (c *Config) validate() error {
	switch c.Engine {
	case EngineAgent, EnginePolicy:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEngine, c.Engine)
	}
}

// NewEngine builds the configured Engine. The agent config is only read
// for the agent engine.
func NewEngine(cfg *Config, agentCfg gaconfig.AgentConfig, logger *slog.Logger) (Engine, error) {
	switch cfg.Engine {
	case EngineAgent:
		return NewAgentEngine(agentCfg, logger), nil
	case EnginePolicy:
		return NewPolicyEngine(cfg.BannedTerms, cfg.ReviewTerms), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, cfg.Engine)
	}
}
