package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"outreach-backend/internal/activity/domain"
	activityrepo "outreach-backend/internal/activity/repository"
	"outreach-backend/internal/apperrors"
	leaddomain "outreach-backend/internal/lead/domain"
	leadrepo "outreach-backend/internal/lead/repository"
	outreachdomain "outreach-backend/internal/outreach/domain"
	"outreach-backend/internal/outreach/repository"
	quotadomain "outreach-backend/internal/quota/domain"
	quotarepo "outreach-backend/internal/quota/repository"
	"outreach-backend/pkg/ai"
	"outreach-backend/pkg/provider"
)

// ApprovalNotifier pushes a heads-up when a task lands in the approval
// queue. A nil notifier disables pushes.
type ApprovalNotifier interface {
	NotifyWaitingApproval(consultantID string, task *outreachdomain.OutreachTask)
}

// CreateTaskInput carries everything AdmitAndSchedule needs for one
// lead. Zero-valued optionals fall back to automatic behavior: channel
// is picked by reachability priority, content is generated, the slot
// finder assigns the timestamp.
type CreateTaskInput struct {
	LeadID      string
	Channel     outreachdomain.Channel
	ScheduledAt *time.Time
	Content     string
	Subject     string
	// Ordinal spaces batch members apart before conflict checking.
	Ordinal int
}

// OutreachUsecase is the task lifecycle manager plus the admission and
// scheduling front door.
type OutreachUsecase interface {
	// AdmitAndSchedule runs the full commit path for one lead: quota
	// admission, slot allocation, content generation and task creation.
	AdmitAndSchedule(ctx context.Context, consultantID string, input CreateTaskInput) (*outreachdomain.OutreachTask, error)

	GetTask(consultantID, taskID string) (*outreachdomain.OutreachTask, error)
	ListTasks(consultantID string, status *outreachdomain.TaskStatus, limit, offset int) ([]*outreachdomain.OutreachTask, int64, error)
	RemainingQuota(consultantID string) (map[string]int, error)

	ApproveTask(ctx context.Context, consultantID, taskID string) (*outreachdomain.OutreachTask, error)
	RejectTask(consultantID, taskID, reason string) error
	EditTask(consultantID, taskID string, content, subject, contactName *string) (*outreachdomain.OutreachTask, error)
	RescheduleTask(consultantID, taskID string, newTime time.Time) (*outreachdomain.OutreachTask, error)
	SendNow(consultantID, taskID string) (*outreachdomain.OutreachTask, error)
	RetryTask(consultantID, taskID string) (*outreachdomain.OutreachTask, error)
	CancelTask(consultantID, taskID string, block bool, reason string) error
	RestoreTask(consultantID, taskID string) (*outreachdomain.OutreachTask, error)
	MarkDone(consultantID, taskID, summary string) error

	// Dispatch moves a due task into execution and submits it to its
	// delivery provider. Called by the scheduler worker.
	Dispatch(ctx context.Context, taskID string) error

	// HandleOutcome applies an asynchronous delivery result.
	HandleOutcome(taskID string, success bool, summary string) error
}

type outreachUsecase struct {
	taskRepo     repository.TaskRepository
	leadRepo     leadrepo.LeadRepository
	blockRepo    repository.BlockRepository
	ledger       quotarepo.Ledger
	configRepo   quotarepo.ConfigRepository
	activityRepo activityrepo.ActivityRepository
	slotFinder   *SlotFinder
	assistant    ai.OutreachAssistant
	providers    *provider.Registry
	notifier     ApprovalNotifier
}

// NewOutreachUsecase creates a new OutreachUsecase
func NewOutreachUsecase(
	taskRepo repository.TaskRepository,
	leadRepo leadrepo.LeadRepository,
	blockRepo repository.BlockRepository,
	ledger quotarepo.Ledger,
	configRepo quotarepo.ConfigRepository,
	activityRepo activityrepo.ActivityRepository,
	slotFinder *SlotFinder,
	assistant ai.OutreachAssistant,
	providers *provider.Registry,
	notifier ApprovalNotifier,
) OutreachUsecase {
	return &outreachUsecase{
		taskRepo:     taskRepo,
		leadRepo:     leadRepo,
		blockRepo:    blockRepo,
		ledger:       ledger,
		configRepo:   configRepo,
		activityRepo: activityRepo,
		slotFinder:   slotFinder,
		assistant:    assistant,
		providers:    providers,
		notifier:     notifier,
	}
}

func (u *outreachUsecase) AdmitAndSchedule(ctx context.Context, consultantID string, input CreateTaskInput) (*outreachdomain.OutreachTask, error) {
	lead, err := u.leadRepo.FindByID(input.LeadID)
	if err != nil {
		return nil, err
	}
	if lead == nil || lead.ConsultantID != consultantID {
		return nil, apperrors.ErrNotFound
	}

	config, err := u.configRepo.Get(consultantID)
	if err != nil {
		return nil, err
	}

	channel := input.Channel
	if channel == "" {
		channel = pickChannel(lead)
	}
	if !channel.Valid() {
		return nil, fmt.Errorf("invalid channel %q", channel)
	}
	if err := u.checkReachable(lead, channel); err != nil {
		return nil, err
	}

	blocked, err := u.blockRepo.IsBlocked(consultantID, lead.ID, channel)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("lead %s is blocked on channel %s", lead.ID, channel)
	}

	if err := u.ensureNoActiveTask(lead.ID); err != nil {
		return nil, err
	}

	// Content generation happens before admission so a generator failure
	// cannot consume a quota unit.
	content, subject := input.Content, input.Subject
	if content == "" {
		generated, err := u.assistant.GenerateContent(ctx, ai.LeadBrief{
			ID:           lead.ID,
			BusinessName: lead.BusinessName,
			Status:       string(lead.Status),
			Score:        lead.Score,
			Notes:        lead.Notes,
		}, string(channel))
		if err != nil {
			return nil, fmt.Errorf("content generation failed: %w", err)
		}
		content = generated.Body
		if subject == "" {
			subject = generated.Subject
		}
	}

	now := time.Now()
	loc := config.Location()
	policy := config.Policy(string(channel))

	admitted, err := u.ledger.Admit(consultantID, string(channel), quotadomain.DayKey(now, loc), policy.MaxPerDay)
	if err != nil {
		// Fail closed: a broken ledger store denies admission.
		return nil, fmt.Errorf("ledger unavailable: %w", err)
	}
	if !admitted {
		return nil, apperrors.ErrAdmissionDenied
	}

	scheduledAt := now
	if input.ScheduledAt != nil {
		scheduledAt = *input.ScheduledAt
	} else {
		scheduledAt, err = u.slotFinder.NextSlot(consultantID, channel, input.Ordinal, policy, loc, config.StrictSlots, now)
		if err != nil {
			return nil, err
		}
	}

	status := outreachdomain.TaskStatusWaitingApproval
	if config.Mode == "autonomous" {
		status = outreachdomain.TaskStatusScheduled
	}

	task := &outreachdomain.OutreachTask{
		ConsultantID:   consultantID,
		LeadID:         lead.ID,
		Channel:        channel,
		Status:         status,
		ScheduledAt:    scheduledAt,
		Timezone:       config.Timezone,
		ContactName:    lead.BusinessName,
		TargetPhone:    lead.Phone,
		TargetEmail:    lead.Email,
		ContentPreview: content,
		Subject:        subject,
		MaxAttempts:    3,
	}
	if err := u.taskRepo.Create(task); err != nil {
		return nil, err
	}

	if err := u.leadRepo.SetActiveTask(lead.ID, &task.ID, leaddomain.LeadStatusInOutreach); err != nil {
		return nil, err
	}

	u.logActivity(consultantID, lead.ID, task.ID, "task_created",
		fmt.Sprintf("%s outreach scheduled for %s", channel, scheduledAt.Format(time.RFC3339)))

	if status == outreachdomain.TaskStatusWaitingApproval && u.notifier != nil {
		u.notifier.NotifyWaitingApproval(consultantID, task)
	}

	log.Printf("[OutreachUsecase] created task %s (lead %s, %s, %s) at %s",
		task.ID, lead.ID, channel, status, scheduledAt.Format(time.RFC3339))
	return task, nil
}

// ensureNoActiveTask enforces the one-active-task-per-lead invariant.
// Stale waiting_approval tasks are superseded: cancelled in place so the
// new task can take over the lead.
func (u *outreachUsecase) ensureNoActiveTask(leadID string) error {
	tasks, err := u.taskRepo.FindActiveByLead(leadID)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, t := range tasks {
		if t.Status == outreachdomain.TaskStatusWaitingApproval && now.Sub(t.CreatedAt) >= staleApprovalAge {
			t.Status = outreachdomain.TaskStatusCancelled
			t.LastError = "superseded: approval window expired"
			if err := u.taskRepo.Update(t); err != nil {
				return err
			}
			continue
		}
		return fmt.Errorf("lead %s already has active task %s", leadID, t.ID)
	}
	return nil
}

func (u *outreachUsecase) checkReachable(lead *leaddomain.Lead, channel outreachdomain.Channel) error {
	switch channel {
	case outreachdomain.ChannelVoice, outreachdomain.ChannelWhatsApp:
		if !lead.HasPhone() {
			return fmt.Errorf("lead %s has no phone number for %s", lead.ID, channel)
		}
	case outreachdomain.ChannelEmail:
		if !lead.HasEmail() {
			return fmt.Errorf("lead %s has no email address", lead.ID)
		}
	}
	return nil
}

// pickChannel applies the reachability priority: voice when a phone
// exists, email otherwise. Whatsapp is only used on explicit request.
func pickChannel(lead *leaddomain.Lead) outreachdomain.Channel {
	if lead.HasPhone() {
		return outreachdomain.ChannelVoice
	}
	return outreachdomain.ChannelEmail
}

func (u *outreachUsecase) GetTask(consultantID, taskID string) (*outreachdomain.OutreachTask, error) {
	task, err := u.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.ConsultantID != consultantID {
		return nil, apperrors.ErrNotFound
	}
	return task, nil
}

func (u *outreachUsecase) ListTasks(consultantID string, status *outreachdomain.TaskStatus, limit, offset int) ([]*outreachdomain.OutreachTask, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.taskRepo.FindByConsultant(consultantID, status, limit, offset)
}

func (u *outreachUsecase) RemainingQuota(consultantID string) (map[string]int, error) {
	config, err := u.configRepo.Get(consultantID)
	if err != nil {
		return nil, err
	}
	loc := config.Location()
	day := quotadomain.DayKey(time.Now(), loc)

	remaining := make(map[string]int, len(outreachdomain.Channels))
	for _, channel := range outreachdomain.Channels {
		policy := config.Policy(string(channel))
		left, err := u.ledger.Remaining(consultantID, string(channel), day, policy.MaxPerDay)
		if err != nil {
			return nil, err
		}
		remaining[string(channel)] = left
	}
	return remaining, nil
}

func (u *outreachUsecase) logActivity(consultantID, leadID, taskID, kind, detail string) {
	if u.activityRepo == nil {
		return
	}
	err := u.activityRepo.Append(&domain.Activity{
		ConsultantID: consultantID,
		LeadID:       leadID,
		TaskID:       taskID,
		Kind:         kind,
		Detail:       detail,
	})
	if err != nil {
		log.Printf("[OutreachUsecase] failed to record activity %s: %v", kind, err)
	}
}
