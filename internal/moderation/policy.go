package moderation

import (
	"context"
	"strings"
)

// PolicyEngine is an offline keyword engine. Banned terms reject, review
// terms hold for manual review, and everything else is approved.
type PolicyEngine struct {
	banned []string
	review []string
}

// NewPolicyEngine normalizes the provided term lists.
func NewPolicyEngine(banned, review []string) *PolicyEngine {
	return &PolicyEngine{
		banned: normalizeTerms(banned),
		review: normalizeTerms(review),
	}
}

func (p *PolicyEngine) Moderate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	text := strings.ToLower(strings.Join([]string{req.Title, req.Description, req.Transcript}, "\n"))

	if hits := matches(text, p.banned); len(hits) > 0 {
		return Response{
			Confidence: 0.95,
			Reason:     "contains banned term: " + hits[0],
			Flags:      prefixed("banned", hits),
		}, nil
	}

	if hits := matches(text, p.review); len(hits) > 0 {
		return Response{
			RequiresReview: true,
			Confidence:     0.6,
			Reason:         "contains term requiring review: " + hits[0],
			Flags:          prefixed("review", hits),
		}, nil
	}

	if req.Transcript == "" && len(req.VideoFrames) == 0 {
		return Response{
			IsApproved: true,
			Confidence: 0.5,
			Reason:     "passed metadata-only moderation",
			Flags:      []string{"metadata-only"},
		}, nil
	}

	return Response{
		IsApproved: true,
		Confidence: 0.9,
		Reason:     "passed automated moderation",
		Flags:      []string{},
	}, nil
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			out = append(out, term)
		}
	}
	return out
}

func matches(text string, terms []string) []string {
	var hits []string
	for _, term := range terms {
		if strings.Contains(text, term) {
			hits = append(hits, term)
		}
	}
	return hits
}

func prefixed(prefix string, terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = prefix + ":" + t
	}
	return out
}
