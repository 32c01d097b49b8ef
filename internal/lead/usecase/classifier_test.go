package usecase

import (
	"testing"
	"time"

	leaddomain "outreach-backend/internal/lead/domain"
	outreachdomain "outreach-backend/internal/outreach/domain"
	quotadomain "outreach-backend/internal/quota/domain"
)

func testConfig() *quotadomain.RateLimitConfig {
	return quotadomain.DefaultConfig("c1")
}

func makeLead(status leaddomain.LeadStatus, score int, createdAgo time.Duration, now time.Time) *leaddomain.Lead {
	return &leaddomain.Lead{
		ID:           "lead-" + string(status),
		ConsultantID: "c1",
		BusinessName: "Acme",
		Phone:        "+3912345678",
		Score:        score,
		Status:       status,
		CreatedAt:    now.Add(-createdAgo),
	}
}

func TestClassifyCooldownBoundary(t *testing.T) {
	now := time.Now()
	config := testConfig() // cooldownNew = 1 day

	tests := []struct {
		name       string
		createdAgo time.Duration
		wantAction bool
		wantReason SkipReason
	}{
		{"23h old is too recent", 23 * time.Hour, false, SkipTooRecent},
		{"25h old is actionable", 25 * time.Hour, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := makeLead(leaddomain.LeadStatusNew, 80, tt.createdAgo, now)
			result := Classify([]*leaddomain.Lead{lead}, nil, nil, config, now)

			if tt.wantAction {
				if len(result.Actionable) != 1 {
					t.Fatalf("expected 1 actionable lead, got %d (skips=%v)", len(result.Actionable), result.SkipReasons)
				}
				return
			}
			if len(result.Actionable) != 0 {
				t.Fatalf("expected no actionable leads, got %d", len(result.Actionable))
			}
			if result.SkipReasons[tt.wantReason] != 1 {
				t.Errorf("expected skip reason %s, got %v", tt.wantReason, result.SkipReasons)
			}
		})
	}
}

func TestClassifyTerminalPermanence(t *testing.T) {
	now := time.Now()
	config := testConfig()
	config.MinScore = 0
	config.CooldownNewDays = 0

	for _, status := range []leaddomain.LeadStatus{leaddomain.LeadStatusConverted, leaddomain.LeadStatusNotInterested} {
		lead := makeLead(status, 100, 365*24*time.Hour, now)
		result := Classify([]*leaddomain.Lead{lead}, nil, nil, config, now)
		if len(result.Actionable) != 0 {
			t.Errorf("%s lead must never be actionable", status)
		}
		if result.SkipReasons[SkipTerminal] != 1 {
			t.Errorf("%s lead should be skipped as terminal, got %v", status, result.SkipReasons)
		}
	}
}

func TestClassifyLowScore(t *testing.T) {
	now := time.Now()
	config := testConfig() // minScore = 60

	lead := makeLead(leaddomain.LeadStatusNew, 40, 48*time.Hour, now)
	result := Classify([]*leaddomain.Lead{lead}, nil, nil, config, now)

	if result.SkipReasons[SkipLowScore] != 1 {
		t.Errorf("expected lowScore skip, got %v", result.SkipReasons)
	}
}

func TestClassifyActiveTask(t *testing.T) {
	now := time.Now()
	config := testConfig()

	lead := makeLead(leaddomain.LeadStatusNew, 90, 48*time.Hour, now)
	active := map[string][]*outreachdomain.OutreachTask{
		lead.ID: {{
			ID:        "t1",
			LeadID:    lead.ID,
			Status:    outreachdomain.TaskStatusScheduled,
			CreatedAt: now.Add(-time.Hour),
		}},
	}

	result := Classify([]*leaddomain.Lead{lead}, active, nil, config, now)
	if result.SkipReasons[SkipWithActiveTask] != 1 {
		t.Errorf("expected withActiveTask skip, got %v", result.SkipReasons)
	}
}

func TestClassifyStaleWaitingApproval(t *testing.T) {
	now := time.Now()
	config := testConfig()

	lead := makeLead(leaddomain.LeadStatusNew, 90, 72*time.Hour, now)

	fresh := map[string][]*outreachdomain.OutreachTask{
		lead.ID: {{ID: "t1", LeadID: lead.ID, Status: outreachdomain.TaskStatusWaitingApproval, CreatedAt: now.Add(-2 * time.Hour)}},
	}
	result := Classify([]*leaddomain.Lead{lead}, fresh, nil, config, now)
	if result.SkipReasons[SkipWithActiveTask] != 1 {
		t.Errorf("fresh waiting_approval should count as active, got %v", result.SkipReasons)
	}

	// Parked for over 24h the approval no longer owns the lead
	stale := map[string][]*outreachdomain.OutreachTask{
		lead.ID: {{ID: "t1", LeadID: lead.ID, Status: outreachdomain.TaskStatusWaitingApproval, CreatedAt: now.Add(-30 * time.Hour)}},
	}
	result = Classify([]*leaddomain.Lead{lead}, stale, nil, config, now)
	if len(result.Actionable) != 1 {
		t.Errorf("stale waiting_approval should not block the lead, skips=%v", result.SkipReasons)
	}
}

func TestClassifyContactedCooldown(t *testing.T) {
	now := time.Now()
	config := testConfig() // cooldownContacted = 3 days

	recent := now.Add(-24 * time.Hour)
	lead := makeLead(leaddomain.LeadStatusContacted, 70, 30*24*time.Hour, now)
	lead.LastActivityAt = &recent

	result := Classify([]*leaddomain.Lead{lead}, nil, nil, config, now)
	if result.SkipReasons[SkipRecentlyContacted] != 1 {
		t.Errorf("expected recentlyContacted skip, got %v", result.SkipReasons)
	}

	old := now.Add(-5 * 24 * time.Hour)
	lead.LastActivityAt = &old
	result = Classify([]*leaddomain.Lead{lead}, nil, nil, config, now)
	if len(result.Actionable) != 1 {
		t.Errorf("stalled contacted lead should be actionable, skips=%v", result.SkipReasons)
	}
}

func TestClassifyNegotiationCooldown(t *testing.T) {
	now := time.Now()
	config := testConfig() // cooldownNegotiation = 7 days

	recent := now.Add(-2 * 24 * time.Hour)
	lead := makeLead(leaddomain.LeadStatusInNegotiation, 70, 60*24*time.Hour, now)
	lead.LastActivityAt = &recent

	result := Classify([]*leaddomain.Lead{lead}, nil, nil, config, now)
	if result.SkipReasons[SkipRecentNegotiation] != 1 {
		t.Errorf("expected recentNegotiation skip, got %v", result.SkipReasons)
	}

	stalled := now.Add(-10 * 24 * time.Hour)
	lead.LastActivityAt = &stalled
	result = Classify([]*leaddomain.Lead{lead}, nil, nil, config, now)
	if len(result.Actionable) != 1 {
		t.Errorf("stalled negotiation should be actionable, skips=%v", result.SkipReasons)
	}
}

func TestClassifyInOutreachReentry(t *testing.T) {
	now := time.Now()
	config := testConfig()

	lead := makeLead(leaddomain.LeadStatusInOutreach, 70, 30*24*time.Hour, now)

	// Prior task terminated: lead may re-enter
	done := map[string][]*outreachdomain.OutreachTask{
		lead.ID: {{ID: "t1", LeadID: lead.ID, Status: outreachdomain.TaskStatusCompleted, CreatedAt: now.Add(-48 * time.Hour)}},
	}
	result := Classify([]*leaddomain.Lead{lead}, done, nil, config, now)
	if len(result.Actionable) != 1 {
		t.Errorf("in_outreach with terminated task should be actionable, skips=%v", result.SkipReasons)
	}

	open := map[string][]*outreachdomain.OutreachTask{
		lead.ID: {{ID: "t2", LeadID: lead.ID, Status: outreachdomain.TaskStatusInProgress, CreatedAt: now}},
	}
	result = Classify([]*leaddomain.Lead{lead}, open, nil, config, now)
	if result.SkipReasons[SkipInOutreachActive] != 1 {
		t.Errorf("expected inOutreachActive skip, got %v", result.SkipReasons)
	}
}

func TestClassifyBlockedAndUnreachable(t *testing.T) {
	now := time.Now()
	config := testConfig()

	blockedLead := makeLead(leaddomain.LeadStatusNew, 90, 48*time.Hour, now)
	blockedLead.ID = "blocked-lead"

	noContact := makeLead(leaddomain.LeadStatusNew, 90, 48*time.Hour, now)
	noContact.ID = "no-contact"
	noContact.Phone = ""
	noContact.Email = ""

	result := Classify([]*leaddomain.Lead{blockedLead, noContact},
		nil, map[string]bool{"blocked-lead": true}, config, now)

	if len(result.Actionable) != 0 {
		t.Fatalf("expected no actionable leads, got %d", len(result.Actionable))
	}
	if result.SkipReasons[SkipBlocked] != 1 || result.SkipReasons[SkipNoContactInfo] != 1 {
		t.Errorf("unexpected histogram: %v", result.SkipReasons)
	}
}
