package ai

import (
	"context"
)

// LeadBrief is the minimal lead context handed to the assistant
type LeadBrief struct {
	ID           string `json:"id"`
	BusinessName string `json:"business_name"`
	Status       string `json:"status"`
	Score        int    `json:"score"`
	Notes        string `json:"notes,omitempty"`
}

// OutreachContent is generated message material for one attempt
type OutreachContent struct {
	Subject       string   `json:"subject,omitempty"`
	Body          string   `json:"body"`
	TalkingPoints []string `json:"talking_points,omitempty"`
}

// RevisionProposal is one per-lead change the assistant proposes while
// revising a plan. Proposals referencing unknown leads are discarded by
// the plan manager.
type RevisionProposal struct {
	LeadID        string   `json:"lead_id"`
	Included      *bool    `json:"included,omitempty"`
	Channel       string   `json:"channel,omitempty"`
	Priority      *int     `json:"priority,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	TalkingPoints []string `json:"talking_points,omitempty"`
}

// OutreachAssistant is the interface for AI content generation and plan
// revision. Implement this interface to add new AI providers.
type OutreachAssistant interface {
	GenerateContent(ctx context.Context, lead LeadBrief, channel string) (*OutreachContent, error)
	ProposeRevisions(ctx context.Context, planJSON, instruction string) ([]RevisionProposal, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderStatic ProviderType = "static"
	ProviderAuto   ProviderType = "auto"
)
