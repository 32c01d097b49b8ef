package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"outreach-backend/internal/apperrors"
	leadusecase "outreach-backend/internal/lead/usecase"
	outreachdomain "outreach-backend/internal/outreach/domain"
	outreachusecase "outreach-backend/internal/outreach/usecase"
	"outreach-backend/internal/plan/cache"
	"outreach-backend/internal/plan/domain"
	"outreach-backend/pkg/ai"

	"github.com/google/uuid"
)

// ExecutionResult is the per-lead outcome of executing a plan. One
// lead's denial never aborts the batch.
type ExecutionResult struct {
	LeadID       string `json:"lead_id"`
	BusinessName string `json:"business_name"`
	TaskID       string `json:"task_id,omitempty"`
	Status       string `json:"status"` // created | admission_denied | no_slot | error
	Error        string `json:"error,omitempty"`
}

// PlanUsecase is the reviewable-plan front end over the outreach commit
// path.
type PlanUsecase interface {
	GeneratePlan(ctx context.Context, consultantID string) (*domain.Plan, error)
	RevisePlan(ctx context.Context, consultantID, planID, instruction string) (*domain.Plan, error)
	ExecutePlan(ctx context.Context, consultantID, planID string) ([]ExecutionResult, error)
	GetPlan(consultantID, planID string) (*domain.Plan, error)
}

type planUsecase struct {
	store     cache.Store
	leadUC    leadusecase.LeadUsecase
	outreach  outreachusecase.OutreachUsecase
	assistant ai.OutreachAssistant
}

// NewPlanUsecase creates a new PlanUsecase
func NewPlanUsecase(store cache.Store, leadUC leadusecase.LeadUsecase,
	outreach outreachusecase.OutreachUsecase, assistant ai.OutreachAssistant) PlanUsecase {
	return &planUsecase{
		store:     store,
		leadUC:    leadUC,
		outreach:  outreach,
		assistant: assistant,
	}
}

func (u *planUsecase) GeneratePlan(ctx context.Context, consultantID string) (*domain.Plan, error) {
	classified, err := u.leadUC.ListActionable(consultantID)
	if err != nil {
		return nil, err
	}

	// Highest score first so priority 1 is the best lead
	actionable := classified.Actionable
	sort.SliceStable(actionable, func(i, j int) bool {
		return actionable[i].Lead.Score > actionable[j].Lead.Score
	})

	plan := &domain.Plan{
		ID:           uuid.New().String(),
		ConsultantID: consultantID,
		CreatedAt:    time.Now(),
	}

	for i, candidate := range actionable {
		lead := candidate.Lead
		channel := outreachdomain.ChannelEmail
		if lead.HasPhone() {
			channel = outreachdomain.ChannelVoice
		}
		plan.Decisions = append(plan.Decisions, domain.Decision{
			LeadID:       lead.ID,
			BusinessName: lead.BusinessName,
			Channel:      string(channel),
			Priority:     i + 1,
			Reason:       candidate.Reason,
			Included:     true,
		})
	}
	plan.Recount()
	plan.Summary = summarize(plan, classified.SkipReasons)

	if err := u.store.Put(plan); err != nil {
		return nil, err
	}
	log.Printf("[PlanUsecase] generated plan %s for %s: %d decisions", plan.ID, consultantID, len(plan.Decisions))
	return plan, nil
}

func (u *planUsecase) GetPlan(consultantID, planID string) (*domain.Plan, error) {
	plan, err := u.store.Get(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.ConsultantID != consultantID {
		return nil, apperrors.ErrStaleOrUnknownPlan
	}
	return plan, nil
}

func (u *planUsecase) RevisePlan(ctx context.Context, consultantID, planID, instruction string) (*domain.Plan, error) {
	plan, err := u.GetPlan(consultantID, planID)
	if err != nil {
		return nil, err
	}

	planJSON, err := json.Marshal(plan.Decisions)
	if err != nil {
		return nil, err
	}

	proposals, err := u.assistant.ProposeRevisions(ctx, string(planJSON), instruction)
	if err != nil {
		return nil, fmt.Errorf("revision failed: %w", err)
	}

	applied, rejected := MergeRevisions(plan, proposals)
	plan.Recount()
	now := time.Now()
	plan.RevisedAt = &now

	if err := u.store.Put(plan); err != nil {
		return nil, err
	}
	log.Printf("[PlanUsecase] revised plan %s: %d proposals applied, %d rejected", planID, applied, rejected)
	return plan, nil
}

// MergeRevisions folds assistant proposals into the plan. A proposal
// referencing a lead outside the plan is rejected; decisions not
// mentioned by any proposal carry forward unchanged.
func MergeRevisions(plan *domain.Plan, proposals []ai.RevisionProposal) (applied, rejected int) {
	for _, p := range proposals {
		decision := plan.Decision(p.LeadID)
		if decision == nil {
			rejected++
			continue
		}
		if p.Included != nil {
			decision.Included = *p.Included
		}
		if p.Channel != "" && outreachdomain.Channel(p.Channel).Valid() {
			decision.Channel = p.Channel
		}
		if p.Priority != nil {
			decision.Priority = *p.Priority
		}
		if p.Reason != "" {
			decision.Reason = p.Reason
		}
		if len(p.TalkingPoints) > 0 {
			decision.TalkingPoints = p.TalkingPoints
		}
		applied++
	}
	return applied, rejected
}

func (u *planUsecase) ExecutePlan(ctx context.Context, consultantID, planID string) ([]ExecutionResult, error) {
	plan, err := u.GetPlan(consultantID, planID)
	if err != nil {
		return nil, err
	}

	// Per-channel ordinals keep a batch's slots spaced apart.
	ordinals := make(map[string]int)
	var results []ExecutionResult

	for _, decision := range plan.Included() {
		result := ExecutionResult{LeadID: decision.LeadID, BusinessName: decision.BusinessName}

		ordinal := ordinals[decision.Channel]
		task, err := u.outreach.AdmitAndSchedule(ctx, consultantID, outreachusecase.CreateTaskInput{
			LeadID:  decision.LeadID,
			Channel: outreachdomain.Channel(decision.Channel),
			Ordinal: ordinal,
		})
		switch {
		case err == nil:
			ordinals[decision.Channel]++
			result.Status = "created"
			result.TaskID = task.ID
		case errors.Is(err, apperrors.ErrAdmissionDenied):
			result.Status = "admission_denied"
			result.Error = err.Error()
		case errors.Is(err, apperrors.ErrNoSlotFound):
			result.Status = "no_slot"
			result.Error = err.Error()
		default:
			result.Status = "error"
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	// Execution is one-shot: the plan is consumed regardless of per-lead
	// outcomes.
	if err := u.store.Delete(planID); err != nil {
		log.Printf("[PlanUsecase] failed to delete executed plan %s: %v", planID, err)
	}
	log.Printf("[PlanUsecase] executed plan %s: %d results", planID, len(results))
	return results, nil
}

func summarize(plan *domain.Plan, skips map[leadusecase.SkipReason]int) string {
	included := 0
	for _, d := range plan.Decisions {
		if d.Included {
			included++
		}
	}
	skipped := 0
	for _, n := range skips {
		skipped += n
	}
	return fmt.Sprintf("%d leads planned (%d skipped): voice %d, whatsapp %d, email %d",
		included, skipped,
		plan.ChannelCounts["voice"], plan.ChannelCounts["whatsapp"], plan.ChannelCounts["email"])
}
