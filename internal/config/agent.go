package config

import (
	"errors"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentName         = "WARDEN_AGENT_NAME"
	EnvAgentProviderName = "WARDEN_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "WARDEN_AGENT_BASE_URL"
	EnvAgentModelName    = "WARDEN_AGENT_MODEL_NAME"
	EnvAgentToken        = "WARDEN_AGENT_TOKEN"
	EnvAgentDeployment   = "WARDEN_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "WARDEN_AGENT_API_VERSION"
	EnvAgentAuthType     = "WARDEN_AGENT_AUTH_TYPE"
)

// agentOptions maps environment variables onto provider options.
var agentOptions = map[string]string{
	EnvAgentToken:      "token",
	EnvAgentDeployment: "deployment",
	EnvAgentAPIVersion: "api_version",
	EnvAgentAuthType:   "auth_type",
}

// FinalizeAgent layers c over go-agents DefaultAgentConfig, applies
// environment overrides, and validates the result.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults

	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}

	envString(&c.Name, EnvAgentName)
	envString(&c.Provider.Name, EnvAgentProviderName)
	envString(&c.Provider.BaseURL, EnvAgentBaseURL)
	envString(&c.Model.Name, EnvAgentModelName)
	for env, key := range agentOptions {
		if v := os.Getenv(env); v != "" {
			c.Provider.Options[key] = v
		}
	}

	switch {
	case c.Name == "":
		return errors.New("name required")
	case c.Provider.Name == "":
		return errors.New("provider name required")
	}
	return nil
}
