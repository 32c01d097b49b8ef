package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"outreach-backend/internal/apperrors"
	leaddomain "outreach-backend/internal/lead/domain"
	"outreach-backend/internal/outreach/domain"
)

const (
	// retryBackoff spaces automatic redelivery attempts.
	retryBackoff = 15 * time.Minute
	// staleApprovalAge is how long a waiting_approval task blocks its
	// lead before a new task may supersede it.
	staleApprovalAge = 24 * time.Hour
)

// loadOwnedTask fetches a task and verifies ownership.
func (u *outreachUsecase) loadOwnedTask(consultantID, taskID string) (*domain.OutreachTask, error) {
	task, err := u.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.ConsultantID != consultantID {
		return nil, apperrors.ErrNotFound
	}
	return task, nil
}

func (u *outreachUsecase) ApproveTask(ctx context.Context, consultantID, taskID string) (*domain.OutreachTask, error) {
	task, err := u.loadOwnedTask(consultantID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Status.CanApprove() {
		return nil, apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "approve")
	}

	// Items already due skip the queue and send synchronously.
	if !task.ScheduledAt.After(time.Now()) {
		task.Status = domain.TaskStatusScheduled
		if err := u.taskRepo.Update(task); err != nil {
			return nil, err
		}
		u.logActivity(consultantID, task.LeadID, task.ID, "task_approved", "approved past-due, sending immediately")
		if err := u.Dispatch(ctx, task.ID); err != nil {
			log.Printf("[OutreachUsecase] immediate dispatch of %s failed: %v", task.ID, err)
		}
		return u.taskRepo.FindByID(task.ID)
	}

	task.Status = domain.TaskStatusScheduled
	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}
	u.logActivity(consultantID, task.LeadID, task.ID, "task_approved", "")
	return task, nil
}

func (u *outreachUsecase) RejectTask(consultantID, taskID, reason string) error {
	task, err := u.loadOwnedTask(consultantID, taskID)
	if err != nil {
		return err
	}
	if !task.Status.CanReject() {
		return apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "reject")
	}

	task.Status = domain.TaskStatusCancelled
	task.LastError = reason
	if err := u.taskRepo.Update(task); err != nil {
		return err
	}

	// Rejection is a hard signal: the lead drops back to the top of the
	// funnel rather than staying parked in outreach.
	if err := u.leadRepo.SetActiveTask(task.LeadID, nil, leaddomain.LeadStatusNew); err != nil {
		return err
	}
	u.logActivity(consultantID, task.LeadID, task.ID, "task_rejected", reason)
	return nil
}

func (u *outreachUsecase) EditTask(consultantID, taskID string, content, subject, contactName *string) (*domain.OutreachTask, error) {
	task, err := u.loadOwnedTask(consultantID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Status.CanEdit() {
		return nil, apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "edit")
	}

	if content != nil {
		task.ContentPreview = *content
	}
	if subject != nil {
		task.Subject = *subject
	}
	if contactName != nil {
		task.ContactName = *contactName
	}
	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}
	u.logActivity(consultantID, task.LeadID, task.ID, "task_edited", "")
	return task, nil
}

func (u *outreachUsecase) RescheduleTask(consultantID, taskID string, newTime time.Time) (*domain.OutreachTask, error) {
	task, err := u.loadOwnedTask(consultantID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Status.CanReschedule() {
		return nil, apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "reschedule")
	}
	if !newTime.After(time.Now()) {
		return nil, fmt.Errorf("reschedule time must be in the future")
	}

	task.ScheduledAt = newTime
	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}
	u.logActivity(consultantID, task.LeadID, task.ID, "task_rescheduled", newTime.Format(time.RFC3339))
	return task, nil
}

func (u *outreachUsecase) SendNow(consultantID, taskID string) (*domain.OutreachTask, error) {
	task, err := u.loadOwnedTask(consultantID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Status.CanSendNow() {
		return nil, apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "send-now")
	}

	task.Status = domain.TaskStatusScheduled
	task.ScheduledAt = time.Now()
	task.NextRetryAt = nil
	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}
	u.logActivity(consultantID, task.LeadID, task.ID, "task_send_now", "")
	return task, nil
}

func (u *outreachUsecase) RetryTask(consultantID, taskID string) (*domain.OutreachTask, error) {
	task, err := u.loadOwnedTask(consultantID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Status.CanRetry() {
		return nil, apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "retry")
	}
	if err := u.ensureNoActiveTask(task.LeadID); err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatusScheduled
	task.Attempts = 0
	task.LastError = ""
	task.NextRetryAt = nil
	if task.ScheduledAt.Before(time.Now()) {
		task.ScheduledAt = time.Now().Add(slotBaseDelay)
	}
	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}

	if err := u.leadRepo.SetActiveTask(task.LeadID, &task.ID, leaddomain.LeadStatusInOutreach); err != nil {
		return nil, err
	}
	u.logActivity(consultantID, task.LeadID, task.ID, "task_retried", "")
	return task, nil
}

func (u *outreachUsecase) CancelTask(consultantID, taskID string, block bool, reason string) error {
	task, err := u.loadOwnedTask(consultantID, taskID)
	if err != nil {
		return err
	}
	if !task.Status.CanCancel() {
		return apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "cancel")
	}

	task.Status = domain.TaskStatusCancelled
	task.LastError = reason
	if err := u.taskRepo.Update(task); err != nil {
		return err
	}

	// A cancelled attempt releases the lead; if it was only in the funnel
	// because of this attempt it drops back to new.
	leadStatus := leaddomain.LeadStatusNew
	if lead, err := u.leadRepo.FindByID(task.LeadID); err == nil && lead != nil && lead.Status != leaddomain.LeadStatusInOutreach {
		leadStatus = lead.Status
	}
	if err := u.leadRepo.SetActiveTask(task.LeadID, nil, leadStatus); err != nil {
		return err
	}

	if block {
		err := u.blockRepo.Create(&domain.OutreachBlock{
			ConsultantID: consultantID,
			LeadID:       task.LeadID,
			Channel:      task.Channel,
			Reason:       reason,
		})
		if err != nil {
			return err
		}
	}
	u.logActivity(consultantID, task.LeadID, task.ID, "task_cancelled", reason)
	return nil
}

func (u *outreachUsecase) RestoreTask(consultantID, taskID string) (*domain.OutreachTask, error) {
	task, err := u.loadOwnedTask(consultantID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Status.CanRestore() {
		return nil, apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "restore")
	}
	if err := u.ensureNoActiveTask(task.LeadID); err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatusWaitingApproval
	task.Attempts = 0
	task.LastError = ""
	task.NextRetryAt = nil
	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}

	if err := u.leadRepo.SetActiveTask(task.LeadID, &task.ID, leaddomain.LeadStatusInOutreach); err != nil {
		return nil, err
	}
	u.logActivity(consultantID, task.LeadID, task.ID, "task_restored", "")

	if u.notifier != nil {
		u.notifier.NotifyWaitingApproval(consultantID, task)
	}
	return task, nil
}

func (u *outreachUsecase) MarkDone(consultantID, taskID, summary string) error {
	task, err := u.loadOwnedTask(consultantID, taskID)
	if err != nil {
		return err
	}
	if !task.Status.CanMarkDone() {
		return apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "mark-done")
	}

	task.Status = domain.TaskStatusCompleted
	if summary != "" {
		task.ResultSummary = &summary
	}
	if err := u.taskRepo.Update(task); err != nil {
		return err
	}
	if err := u.completeLead(task); err != nil {
		return err
	}
	u.logActivity(consultantID, task.LeadID, task.ID, "task_marked_done", summary)
	return nil
}

func (u *outreachUsecase) Dispatch(ctx context.Context, taskID string) error {
	task, err := u.taskRepo.FindByID(taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return apperrors.ErrNotFound
	}
	if !task.Status.CanDispatch() {
		return apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "dispatch")
	}

	// Claim by status update so a second worker picking up the same id
	// trips the CanDispatch guard instead of double-sending.
	task.Status = domain.TaskStatusInProgress
	task.Attempts++
	task.NextRetryAt = nil
	if err := u.taskRepo.Update(task); err != nil {
		return err
	}

	p, err := u.providers.For(task.Channel)
	if err != nil {
		return u.failTask(task, err)
	}

	deliveryID, err := p.Submit(ctx, task)
	if err != nil {
		return u.failTask(task, apperrors.NewProviderFailure(string(task.Channel), err))
	}

	task.DeliveryID = deliveryID
	if task.Channel == domain.ChannelVoice {
		// Voice completion arrives through the outcome subscriber once
		// the call agent reports back; the task stays in_progress.
		if err := u.taskRepo.Update(task); err != nil {
			return err
		}
		log.Printf("[OutreachUsecase] task %s submitted, awaiting call outcome (delivery %s)", task.ID, deliveryID)
		return nil
	}

	task.Status = domain.TaskStatusCompleted
	if err := u.taskRepo.Update(task); err != nil {
		return err
	}
	if err := u.completeLead(task); err != nil {
		return err
	}
	u.logActivity(task.ConsultantID, task.LeadID, task.ID, "task_sent",
		fmt.Sprintf("%s delivery %s", task.Channel, deliveryID))
	return nil
}

func (u *outreachUsecase) HandleOutcome(taskID string, success bool, summary string) error {
	task, err := u.taskRepo.FindByID(taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return apperrors.ErrNotFound
	}
	if task.Status != domain.TaskStatusInProgress {
		return apperrors.NewInvalidStateTransition(task.ID, string(task.Status), "outcome")
	}

	if !success {
		return u.failTask(task, fmt.Errorf("delivery reported failure: %s", summary))
	}

	task.Status = domain.TaskStatusCompleted
	if summary != "" {
		task.ResultSummary = &summary
	}
	if err := u.taskRepo.Update(task); err != nil {
		return err
	}
	if err := u.completeLead(task); err != nil {
		return err
	}
	u.logActivity(task.ConsultantID, task.LeadID, task.ID, "task_completed", summary)
	return nil
}

// completeLead applies the lead-side effect of a finished attempt.
func (u *outreachUsecase) completeLead(task *domain.OutreachTask) error {
	if err := u.leadRepo.SetActiveTask(task.LeadID, nil, leaddomain.LeadStatusContacted); err != nil {
		return err
	}
	return u.leadRepo.TouchActivity(task.LeadID)
}

// failTask records a delivery failure: schedule another attempt if the
// budget allows, otherwise land on failed and release the lead.
func (u *outreachUsecase) failTask(task *domain.OutreachTask, cause error) error {
	task.LastError = cause.Error()

	if task.Attempts < task.MaxAttempts {
		next := time.Now().Add(retryBackoff * time.Duration(task.Attempts))
		task.Status = domain.TaskStatusRetryPending
		task.NextRetryAt = &next
		if err := u.taskRepo.Update(task); err != nil {
			return err
		}
		u.logActivity(task.ConsultantID, task.LeadID, task.ID, "task_retry_pending",
			fmt.Sprintf("attempt %d/%d failed: %v", task.Attempts, task.MaxAttempts, cause))
		return cause
	}

	task.Status = domain.TaskStatusFailed
	if err := u.taskRepo.Update(task); err != nil {
		return err
	}
	// The lead stays in_outreach with no active task, which makes it
	// eligible for classifier re-entry.
	if err := u.leadRepo.SetActiveTask(task.LeadID, nil, leaddomain.LeadStatusInOutreach); err != nil {
		return err
	}
	u.logActivity(task.ConsultantID, task.LeadID, task.ID, "task_failed", cause.Error())
	return cause
}
