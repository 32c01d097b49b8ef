package domain

import "time"

// PlanTTL is how long an unexecuted plan survives in the cache.
const PlanTTL = 30 * time.Minute

// Decision is the per-lead entry of a reviewable outreach plan.
type Decision struct {
	LeadID          string   `json:"lead_id"`
	BusinessName    string   `json:"business_name"`
	Channel         string   `json:"channel"`
	Priority        int      `json:"priority"` // 1 is first
	Reason          string   `json:"reason"`
	SuggestedTiming string   `json:"suggested_timing,omitempty"`
	TalkingPoints   []string `json:"talking_points,omitempty"`
	Included        bool     `json:"included"`
}

// Plan is an ephemeral, reviewable batch of outreach decisions. Plans
// live only in the cache; executing or letting the TTL lapse destroys
// them.
type Plan struct {
	ID            string         `json:"id"`
	ConsultantID  string         `json:"consultant_id"`
	Decisions     []Decision     `json:"decisions"`
	Summary       string         `json:"summary"`
	ChannelCounts map[string]int `json:"channel_counts"`
	CreatedAt     time.Time      `json:"created_at"`
	RevisedAt     *time.Time     `json:"revised_at,omitempty"`
}

// Expired reports whether the plan has outlived the TTL at now.
func (p *Plan) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > PlanTTL
}

// Decision returns the entry for a lead id, nil when absent.
func (p *Plan) Decision(leadID string) *Decision {
	for i := range p.Decisions {
		if p.Decisions[i].LeadID == leadID {
			return &p.Decisions[i]
		}
	}
	return nil
}

// Included returns the included decisions ordered by priority.
func (p *Plan) Included() []Decision {
	var out []Decision
	for _, d := range p.Decisions {
		if d.Included {
			out = append(out, d)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Priority < out[j-1].Priority; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Recount refreshes the per-channel counts and summary-relevant totals
// after a revision.
func (p *Plan) Recount() {
	counts := make(map[string]int)
	for _, d := range p.Decisions {
		if d.Included {
			counts[d.Channel]++
		}
	}
	p.ChannelCounts = counts
}
