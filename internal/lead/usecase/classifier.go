package usecase

import (
	"fmt"
	"time"

	leaddomain "outreach-backend/internal/lead/domain"
	outreachdomain "outreach-backend/internal/outreach/domain"
	quotadomain "outreach-backend/internal/quota/domain"
)

// SkipReason is a machine-readable code explaining why a lead was not
// actionable. Codes feed the skipReasons histogram.
type SkipReason string

const (
	SkipTerminal          SkipReason = "terminal"
	SkipBlocked           SkipReason = "blocked"
	SkipWithActiveTask    SkipReason = "withActiveTask"
	SkipTooRecent         SkipReason = "tooRecent"
	SkipLowScore          SkipReason = "lowScore"
	SkipRecentlyContacted SkipReason = "recentlyContacted"
	SkipRecentNegotiation SkipReason = "recentNegotiation"
	SkipInOutreachActive  SkipReason = "inOutreachActive"
	SkipNoContactInfo     SkipReason = "noContactInfo"
)

// staleApprovalAge is how long a waiting_approval task keeps "owning"
// its lead. Older parked tasks no longer count as active so the lead
// can re-enter planning.
const staleApprovalAge = 24 * time.Hour

// ActionableLead pairs a lead with the human-readable reason it was
// selected.
type ActionableLead struct {
	Lead   *leaddomain.Lead `json:"lead"`
	Reason string           `json:"reason"`
}

// ClassifyResult is the classifier's full output: the actionable set
// plus a histogram of why everything else was skipped.
type ClassifyResult struct {
	Actionable  []ActionableLead   `json:"actionable"`
	SkipReasons map[SkipReason]int `json:"skip_reasons"`
}

// taskIsActive reports whether an existing task still owns its lead at
// instant now. waiting_approval tasks go stale after staleApprovalAge.
func taskIsActive(task *outreachdomain.OutreachTask, now time.Time) bool {
	switch task.Status {
	case outreachdomain.TaskStatusScheduled,
		outreachdomain.TaskStatusApproved,
		outreachdomain.TaskStatusInProgress,
		outreachdomain.TaskStatusRetryPending,
		outreachdomain.TaskStatusPaused,
		outreachdomain.TaskStatusDraft:
		return true
	case outreachdomain.TaskStatusWaitingApproval:
		return now.Sub(task.CreatedAt) < staleApprovalAge
	}
	return false
}

// Classify applies the cooldown and active-task rules to the candidate
// set. activeTasks maps lead id to that lead's open tasks; blocked holds
// lead ids with a lead-wide outreach block.
func Classify(leads []*leaddomain.Lead, activeTasks map[string][]*outreachdomain.OutreachTask,
	blocked map[string]bool, config *quotadomain.RateLimitConfig, now time.Time) *ClassifyResult {

	result := &ClassifyResult{
		SkipReasons: make(map[SkipReason]int),
	}

	for _, lead := range leads {
		reason, ok := classifyOne(lead, activeTasks[lead.ID], blocked[lead.ID], config, now)
		if ok {
			result.Actionable = append(result.Actionable, ActionableLead{Lead: lead, Reason: reason})
		} else {
			result.SkipReasons[SkipReason(reason)]++
		}
	}
	return result
}

// classifyOne returns (reason, actionable). When actionable is false the
// reason is a SkipReason code; otherwise it is a descriptive string.
func classifyOne(lead *leaddomain.Lead, tasks []*outreachdomain.OutreachTask,
	leadBlocked bool, config *quotadomain.RateLimitConfig, now time.Time) (string, bool) {

	if lead.Status.IsTerminal() {
		return string(SkipTerminal), false
	}
	if leadBlocked {
		return string(SkipBlocked), false
	}
	if !lead.HasPhone() && !lead.HasEmail() {
		return string(SkipNoContactInfo), false
	}

	hasActive := false
	for _, task := range tasks {
		if taskIsActive(task, now) {
			hasActive = true
			break
		}
	}

	daysSinceCreated := lead.DaysSinceCreated(now)
	daysSinceActivity := lead.DaysSinceLastActivity(now)

	switch lead.Status {
	case leaddomain.LeadStatusNew:
		if hasActive {
			return string(SkipWithActiveTask), false
		}
		if daysSinceCreated <= config.CooldownNewDays {
			return string(SkipTooRecent), false
		}
		if lead.Score < config.MinScore {
			return string(SkipLowScore), false
		}
		return fmt.Sprintf("new lead, score %d, %.1f days old", lead.Score, daysSinceCreated), true

	case leaddomain.LeadStatusContacted:
		if hasActive {
			return string(SkipWithActiveTask), false
		}
		if daysSinceActivity <= config.CooldownContactedDays {
			return string(SkipRecentlyContacted), false
		}
		return fmt.Sprintf("stalled follow-up, %.1f days since last contact", daysSinceActivity), true

	case leaddomain.LeadStatusInNegotiation:
		if hasActive {
			return string(SkipWithActiveTask), false
		}
		if daysSinceActivity <= config.CooldownNegotiationDays {
			return string(SkipRecentNegotiation), false
		}
		return fmt.Sprintf("negotiation stalled for %.1f days", daysSinceActivity), true

	case leaddomain.LeadStatusInOutreach:
		if hasActive {
			return string(SkipInOutreachActive), false
		}
		return "previous attempt finished, eligible for re-entry", true
	}

	return string(SkipTerminal), false
}
