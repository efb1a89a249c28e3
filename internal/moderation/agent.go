package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// AgentEngine asks a language model for a verdict. Submissions with frames
// go through a vision call and everything else through chat.
type AgentEngine struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

// NewAgentEngine creates an AgentEngine from a finalized agent config.
func NewAgentEngine(cfg gaconfig.AgentConfig, logger *slog.Logger) *AgentEngine {
	return &AgentEngine{
		cfg:    cfg,
		logger: logger.With("system", "moderation-agent"),
	}
}

func (e *AgentEngine) Moderate(ctx context.Context, req Request) (Response, error) {
	a, err := agent.New(&e.cfg)
	if err != nil {
		return Response{}, fmt.Errorf("create agent: %w", err)
	}

	prompt := ComposePrompt(req)

	var content string
	if len(req.VideoFrames) > 0 {
		resp, err := a.Vision(ctx, prompt, req.VideoFrames)
		if err != nil {
			return Response{}, fmt.Errorf("vision call: %w", err)
		}
		content = resp.Content()
	} else {
		resp, err := a.Chat(ctx, prompt)
		if err != nil {
			return Response{}, fmt.Errorf("chat call: %w", err)
		}
		content = resp.Content()
	}

	parsed, err := ParseResponse(content)
	if err != nil {
		return Response{}, fmt.Errorf("parse response: %w", err)
	}

	e.logger.DebugContext(ctx, "agent verdict", "frames", len(req.VideoFrames), "reason", parsed.Reason)
	return parsed, nil
}
