package ai

import (
	"context"
	"fmt"
)

// StaticAssistant is the deterministic fallback used when no AI provider
// is configured. Content comes from channel templates and revision
// proposals are always empty.
type StaticAssistant struct{}

// NewStaticAssistant creates a StaticAssistant
func NewStaticAssistant() *StaticAssistant {
	return &StaticAssistant{}
}

func (s *StaticAssistant) GenerateContent(ctx context.Context, lead LeadBrief, channel string) (*OutreachContent, error) {
	switch channel {
	case "voice":
		return &OutreachContent{
			Body: fmt.Sprintf("Introduce yourself, mention you noticed %s online, and ask whether they currently handle customer outreach manually.", lead.BusinessName),
			TalkingPoints: []string{
				"Keep the call under two minutes",
				"Offer a follow-up email with details",
			},
		}, nil
	case "email":
		return &OutreachContent{
			Subject: fmt.Sprintf("Quick question about %s", lead.BusinessName),
			Body:    fmt.Sprintf("Hi,\n\nI came across %s and wanted to reach out. Would you be open to a short call this week?\n\nBest regards", lead.BusinessName),
		}, nil
	default:
		return &OutreachContent{
			Body: fmt.Sprintf("Hi! I came across %s and wanted to get in touch. Would you have a few minutes this week?", lead.BusinessName),
		}, nil
	}
}

func (s *StaticAssistant) ProposeRevisions(ctx context.Context, planJSON, instruction string) ([]RevisionProposal, error) {
	return nil, fmt.Errorf("plan revision requires an AI provider")
}
