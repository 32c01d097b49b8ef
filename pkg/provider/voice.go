package provider

import (
	"context"
	"fmt"
	"log"

	"outreach-backend/internal/outreach/domain"
	"outreach-backend/internal/outreach/repository"
)

// VoiceProvider books the telephony sub-resource. The actual call is
// placed by the external calling agent that polls the voice_calls table.
type VoiceProvider struct {
	calls repository.VoiceCallRepository
}

// NewVoiceProvider creates a VoiceProvider
func NewVoiceProvider(calls repository.VoiceCallRepository) *VoiceProvider {
	return &VoiceProvider{calls: calls}
}

func (p *VoiceProvider) Submit(ctx context.Context, task *domain.OutreachTask) (string, error) {
	if task.TargetPhone == "" {
		return "", fmt.Errorf("task %s has no target phone", task.ID)
	}

	call := &domain.VoiceCall{
		ConsultantID: task.ConsultantID,
		TaskID:       task.ID,
		TargetPhone:  task.TargetPhone,
		ScheduledAt:  task.ScheduledAt,
		Status:       domain.TaskStatusScheduled,
		Instruction:  task.ContentPreview,
	}
	if err := p.calls.Create(call); err != nil {
		return "", err
	}

	log.Printf("[VoiceProvider] booked call %s for task %s at %s", call.ID, task.ID, task.ScheduledAt)
	return call.ID, nil
}
