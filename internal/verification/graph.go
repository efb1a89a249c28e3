package verification

import (
	"context"
	"fmt"
	"sync"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/warden/internal/extraction"
	"github.com/JaimeStill/warden/internal/moderation"
	"github.com/JaimeStill/warden/internal/progress"
)

const (
	keyBundle   = "bundle"
	keyDecision = "decision"
)

// run carries one Verify call through the graph. fault keeps the node
// error intact regardless of how the graph wraps it. mu serializes progress
// so concurrent sub-stages are reported in recorded order.
type run struct {
	mu      sync.Mutex
	sub     Submission
	variant extraction.Variant
	fault   error
}

func (o *Orchestrator) buildGraph(r *run) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("warden-verify")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("extract", o.extractNode(r)); err != nil {
		return nil, err
	}
	if err := graph.AddNode("moderate", o.moderateNode(r)); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("extract", "moderate", nil); err != nil {
		return nil, err
	}
	if err := graph.SetEntryPoint("extract"); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("moderate"); err != nil {
		return nil, err
	}

	return graph, nil
}

func (o *Orchestrator) extractNode(r *run) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		o.advance(ctx, r, progress.Extracting, "")

		notify := func(stage progress.Stage) {
			o.advance(ctx, r, stage, "")
		}

		bundle := o.extractor.Extract(ctx, r.variant, extraction.Input{
			Data:        r.sub.Data,
			MimeType:    r.sub.MimeType,
			ContentType: r.sub.ContentType,
			Title:       r.sub.Title,
			Description: r.sub.Description,
		}, notify)

		return s.Set(keyBundle, bundle), nil
	})
}

func (o *Orchestrator) moderateNode(r *run) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		bundle, err := bundleFrom(s)
		if err != nil {
			r.fault = err
			return s, err
		}

		o.advance(ctx, r, progress.Moderating, "")

		decision, err := o.decider.Decide(ctx, bundle)
		if err != nil {
			r.fault = err
			return s, fmt.Errorf("moderate: %w", err)
		}

		return s.Set(keyDecision, decision), nil
	})
}

func bundleFrom(s state.State) (extraction.Bundle, error) {
	val, ok := s.Get(keyBundle)
	if !ok {
		return extraction.Bundle{}, fmt.Errorf("%w: missing %s in state", ErrGraphFailed, keyBundle)
	}
	b, ok := val.(extraction.Bundle)
	if !ok {
		return extraction.Bundle{}, fmt.Errorf("%w: %s is not extraction.Bundle", ErrGraphFailed, keyBundle)
	}
	return b, nil
}

func decisionFrom(s state.State) (moderation.Decision, error) {
	val, ok := s.Get(keyDecision)
	if !ok {
		return moderation.Decision{}, fmt.Errorf("%w: missing %s in final state", ErrGraphFailed, keyDecision)
	}
	d, ok := val.(moderation.Decision)
	if !ok {
		return moderation.Decision{}, fmt.Errorf("%w: %s is not moderation.Decision", ErrGraphFailed, keyDecision)
	}
	return d, nil
}
