package moderation

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/warden/pkg/formatting"
)

const instructions = `You are a content moderator for a media publishing platform.
Decide whether the submission below may be published.

Respond with a single JSON object and nothing else:
{
  "approved": boolean,
  "requires_review": boolean,
  "confidence": number between 0 and 1,
  "reason": short human-readable explanation,
  "flags": array of short policy tags
}

Set "approved" when the content is clearly acceptable. Set "requires_review"
when it is ambiguous and a human should decide. Set neither when it clearly
violates policy. Never set both.`

type agentVerdict struct {
	Approved       bool     `json:"approved"`
	RequiresReview bool     `json:"requires_review"`
	Confidence     float64  `json:"confidence"`
	Reason         string   `json:"reason"`
	Flags          []string `json:"flags"`
}

// ComposePrompt renders the moderation prompt for req. Frames are attached
// separately as images.
func ComposePrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n## Submission\n\n")
	fmt.Fprintf(&sb, "Content type: %s\n", req.ContentType)
	fmt.Fprintf(&sb, "Title: %s\n", req.Title)
	fmt.Fprintf(&sb, "Description: %s\n", req.Description)

	if req.Transcript != "" {
		fmt.Fprintf(&sb, "\n## Extracted text\n\n%s\n", req.Transcript)
	} else {
		sb.WriteString("\nNo transcript or document text could be extracted. Judge from the metadata")
		if len(req.VideoFrames) > 0 {
			sb.WriteString(" and the attached frames")
		}
		sb.WriteString(".\n")
	}

	if n := len(req.VideoFrames); n > 0 {
		fmt.Fprintf(&sb, "\n%d representative video frames are attached.\n", n)
	}

	return sb.String()
}

// ParseResponse decodes a model reply into a Response.
func ParseResponse(content string) (Response, error) {
	v, err := formatting.Parse[agentVerdict](content)
	if err != nil {
		return Response{}, err
	}
	return Response{
		IsApproved:     v.Approved,
		RequiresReview: v.RequiresReview,
		Confidence:     v.Confidence,
		Reason:         v.Reason,
		Flags:          v.Flags,
	}, nil
}
