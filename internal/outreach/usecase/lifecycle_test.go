package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-backend/internal/apperrors"
	leaddomain "outreach-backend/internal/lead/domain"
	"outreach-backend/internal/outreach/domain"
	quotadomain "outreach-backend/internal/quota/domain"
	quotarepo "outreach-backend/internal/quota/repository"
	"outreach-backend/pkg/ai"
	"outreach-backend/pkg/provider"
)

// In-memory fakes. Maps are enough here: the tests are single-goroutine.

type fakeTaskRepo struct {
	tasks map[string]*domain.OutreachTask
	seq   int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.OutreachTask)}
}

func (r *fakeTaskRepo) Create(task *domain.OutreachTask) error {
	r.seq++
	if task.ID == "" {
		task.ID = "task-" + string(rune('a'+r.seq-1))
	}
	task.CreatedAt = time.Now()
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) FindByID(id string) (*domain.OutreachTask, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) FindByConsultant(consultantID string, status *domain.TaskStatus, limit, offset int) ([]*domain.OutreachTask, int64, error) {
	var out []*domain.OutreachTask
	for _, t := range r.tasks {
		if t.ConsultantID != consultantID {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) FindActiveByLead(leadID string) ([]*domain.OutreachTask, error) {
	var out []*domain.OutreachTask
	for _, t := range r.tasks {
		if t.LeadID == leadID && !t.Status.IsTerminal() {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(task *domain.OutreachTask) error {
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) FindDue(now time.Time, limit int) ([]*domain.OutreachTask, error) {
	var out []*domain.OutreachTask
	for _, t := range r.tasks {
		due := (t.Status == domain.TaskStatusScheduled || t.Status == domain.TaskStatusApproved) && !t.ScheduledAt.After(now)
		retryDue := t.Status == domain.TaskStatusRetryPending && t.NextRetryAt != nil && !t.NextRetryAt.After(now)
		if due || retryDue {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) CountScheduledBetween(consultantID string, channel domain.Channel, from, to time.Time) (int64, error) {
	var n int64
	for _, t := range r.tasks {
		if t.ConsultantID == consultantID && t.Channel == channel && !t.Status.IsTerminal() &&
			!t.ScheduledAt.Before(from) && !t.ScheduledAt.After(to) {
			n++
		}
	}
	return n, nil
}

type fakeLeadRepo struct {
	leads map[string]*leaddomain.Lead
}

func newFakeLeadRepo(leads ...*leaddomain.Lead) *fakeLeadRepo {
	r := &fakeLeadRepo{leads: make(map[string]*leaddomain.Lead)}
	for _, l := range leads {
		cp := *l
		r.leads[l.ID] = &cp
	}
	return r
}

func (r *fakeLeadRepo) Create(lead *leaddomain.Lead) error {
	cp := *lead
	r.leads[lead.ID] = &cp
	return nil
}

func (r *fakeLeadRepo) FindByID(id string) (*leaddomain.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLeadRepo) FindByConsultant(consultantID string, status *leaddomain.LeadStatus, limit, offset int) ([]*leaddomain.Lead, int64, error) {
	return nil, 0, nil
}

func (r *fakeLeadRepo) FindByIDs(consultantID string, ids []string) ([]*leaddomain.Lead, error) {
	var out []*leaddomain.Lead
	for _, id := range ids {
		if l, ok := r.leads[id]; ok && l.ConsultantID == consultantID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) FindCandidates(consultantID string, limit int) ([]*leaddomain.Lead, error) {
	var out []*leaddomain.Lead
	for _, l := range r.leads {
		if l.ConsultantID == consultantID && !l.Status.IsTerminal() {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) Update(lead *leaddomain.Lead) error {
	cp := *lead
	r.leads[lead.ID] = &cp
	return nil
}

func (r *fakeLeadRepo) SetActiveTask(leadID string, taskID *string, status leaddomain.LeadStatus) error {
	l, ok := r.leads[leadID]
	if !ok {
		return errors.New("lead not found")
	}
	l.ActiveTaskID = taskID
	l.Status = status
	return nil
}

func (r *fakeLeadRepo) TouchActivity(leadID string) error {
	now := time.Now()
	if l, ok := r.leads[leadID]; ok {
		l.LastActivityAt = &now
	}
	return nil
}

type fakeBlockRepo struct {
	blocks []*domain.OutreachBlock
}

func (r *fakeBlockRepo) Create(block *domain.OutreachBlock) error {
	r.blocks = append(r.blocks, block)
	return nil
}

func (r *fakeBlockRepo) IsBlocked(consultantID, leadID string, channel domain.Channel) (bool, error) {
	for _, b := range r.blocks {
		if b.LeadID == leadID && (b.Channel == channel || b.Channel == "") {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBlockRepo) BlockedLeadIDs(consultantID string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, b := range r.blocks {
		if b.Channel == "" {
			out[b.LeadID] = true
		}
	}
	return out, nil
}

type fakeConfigRepo struct {
	config *quotadomain.RateLimitConfig
}

func (r *fakeConfigRepo) Get(consultantID string) (*quotadomain.RateLimitConfig, error) {
	if r.config != nil {
		return r.config, nil
	}
	return quotadomain.DefaultConfig(consultantID), nil
}

func (r *fakeConfigRepo) Save(config *quotadomain.RateLimitConfig) error {
	r.config = config
	return nil
}

type fakeProvider struct {
	submitted []string
	err       error
}

func (p *fakeProvider) Submit(ctx context.Context, task *domain.OutreachTask) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.submitted = append(p.submitted, task.ID)
	return "delivery-" + task.ID, nil
}

type fixture struct {
	uc       OutreachUsecase
	tasks    *fakeTaskRepo
	leads    *fakeLeadRepo
	blocks   *fakeBlockRepo
	config   *fakeConfigRepo
	email    *fakeProvider
	voice    *fakeProvider
	whatsapp *fakeProvider
}

func newFixture(leads ...*leaddomain.Lead) *fixture {
	f := &fixture{
		tasks:    newFakeTaskRepo(),
		leads:    newFakeLeadRepo(leads...),
		blocks:   &fakeBlockRepo{},
		config:   &fakeConfigRepo{},
		email:    &fakeProvider{},
		voice:    &fakeProvider{},
		whatsapp: &fakeProvider{},
	}
	registry := provider.NewRegistry()
	registry.Register(domain.ChannelEmail, f.email)
	registry.Register(domain.ChannelVoice, f.voice)
	registry.Register(domain.ChannelWhatsApp, f.whatsapp)

	f.uc = NewOutreachUsecase(
		f.tasks, f.leads, f.blocks,
		quotarepo.NewMemoryLedger(), f.config, nil,
		NewSlotFinder(f.tasks), ai.NewStaticAssistant(), registry, nil,
	)
	return f
}

func testLead(id string) *leaddomain.Lead {
	return &leaddomain.Lead{
		ID:           id,
		ConsultantID: "c1",
		BusinessName: "Acme Srl",
		Phone:        "+391234567",
		Email:        "info@acme.example",
		Score:        85,
		Status:       leaddomain.LeadStatusNew,
		CreatedAt:    time.Now().Add(-72 * time.Hour),
	}
}

func TestAdmitAndScheduleApprovalMode(t *testing.T) {
	f := newFixture(testLead("l1"))

	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusWaitingApproval, task.Status)
	assert.Equal(t, domain.ChannelVoice, task.Channel)
	assert.NotEmpty(t, task.ContentPreview)

	lead, _ := f.leads.FindByID("l1")
	require.NotNil(t, lead.ActiveTaskID)
	assert.Equal(t, task.ID, *lead.ActiveTaskID)
	assert.Equal(t, leaddomain.LeadStatusInOutreach, lead.Status)
}

func TestAdmitAndScheduleAutonomousMode(t *testing.T) {
	f := newFixture(testLead("l1"))
	cfg := quotadomain.DefaultConfig("c1")
	cfg.Mode = "autonomous"
	f.config.config = cfg

	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusScheduled, task.Status)
}

func TestAdmitAndScheduleQuotaDenied(t *testing.T) {
	f := newFixture(testLead("l1"), testLead("l2"))
	cfg := quotadomain.DefaultConfig("c1")
	policy := cfg.Policy("voice")
	policy.MaxPerDay = 1
	cfg.Channels["voice"] = policy
	f.config.config = cfg

	_, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	_, err = f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l2"})
	assert.ErrorIs(t, err, apperrors.ErrAdmissionDenied)
}

func TestAdmitAndScheduleOneActiveTaskPerLead(t *testing.T) {
	f := newFixture(testLead("l1"))

	_, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	_, err = f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	assert.Error(t, err, "second task for the same lead must be rejected")
}

func TestAdmitAndScheduleBlockedLead(t *testing.T) {
	f := newFixture(testLead("l1"))
	f.blocks.Create(&domain.OutreachBlock{ConsultantID: "c1", LeadID: "l1", Channel: domain.ChannelVoice})

	_, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1", Channel: domain.ChannelVoice})
	assert.Error(t, err)
}

func TestApproveFutureTask(t *testing.T) {
	f := newFixture(testLead("l1"))
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	approved, err := f.uc.ApproveTask(context.Background(), "c1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusScheduled, approved.Status)
	assert.Empty(t, f.voice.submitted, "future task must not send on approval")
}

func TestApproveDueTaskSendsImmediately(t *testing.T) {
	f := newFixture(testLead("l1"))
	past := time.Now().Add(-time.Minute)
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{
		LeadID: "l1", Channel: domain.ChannelEmail, ScheduledAt: &past,
	})
	require.NoError(t, err)

	approved, err := f.uc.ApproveTask(context.Background(), "c1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, approved.Status)
	assert.Len(t, f.email.submitted, 1)
}

func TestApproveGuard(t *testing.T) {
	f := newFixture(testLead("l1"))
	cfg := quotadomain.DefaultConfig("c1")
	cfg.Mode = "autonomous"
	f.config.config = cfg

	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	_, err = f.uc.ApproveTask(context.Background(), "c1", task.ID)
	assert.True(t, apperrors.IsInvalidStateTransition(err), "approving a scheduled task must fail, got %v", err)
}

func TestRejectTask(t *testing.T) {
	f := newFixture(testLead("l1"))
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	require.NoError(t, f.uc.RejectTask("c1", task.ID, "not a fit"))

	got, _ := f.tasks.FindByID(task.ID)
	assert.Equal(t, domain.TaskStatusCancelled, got.Status)

	lead, _ := f.leads.FindByID("l1")
	assert.Nil(t, lead.ActiveTaskID)
	assert.Equal(t, leaddomain.LeadStatusNew, lead.Status)
}

func TestReschedulePastRejected(t *testing.T) {
	f := newFixture(testLead("l1"))
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	_, err = f.uc.RescheduleTask("c1", task.ID, time.Now().Add(-time.Hour))
	assert.Error(t, err)

	future := time.Now().Add(2 * time.Hour)
	updated, err := f.uc.RescheduleTask("c1", task.ID, future)
	require.NoError(t, err)
	assert.WithinDuration(t, future, updated.ScheduledAt, time.Second)
}

func TestSendNow(t *testing.T) {
	f := newFixture(testLead("l1"))
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	updated, err := f.uc.SendNow("c1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusScheduled, updated.Status)
	assert.WithinDuration(t, time.Now(), updated.ScheduledAt, time.Second)
}

func TestDispatchEmailCompletes(t *testing.T) {
	f := newFixture(testLead("l1"))
	past := time.Now().Add(-time.Minute)
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{
		LeadID: "l1", Channel: domain.ChannelEmail, ScheduledAt: &past,
	})
	require.NoError(t, err)
	_, err = f.uc.ApproveTask(context.Background(), "c1", task.ID)
	require.NoError(t, err)

	got, _ := f.tasks.FindByID(task.ID)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
	assert.NotEmpty(t, got.DeliveryID)

	lead, _ := f.leads.FindByID("l1")
	assert.Equal(t, leaddomain.LeadStatusContacted, lead.Status)
	assert.Nil(t, lead.ActiveTaskID)
	assert.NotNil(t, lead.LastActivityAt)
}

func TestDispatchVoiceStaysInProgress(t *testing.T) {
	f := newFixture(testLead("l1"))
	past := time.Now().Add(-time.Minute)
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{
		LeadID: "l1", Channel: domain.ChannelVoice, ScheduledAt: &past,
	})
	require.NoError(t, err)
	_, err = f.uc.ApproveTask(context.Background(), "c1", task.ID)
	require.NoError(t, err)

	got, _ := f.tasks.FindByID(task.ID)
	assert.Equal(t, domain.TaskStatusInProgress, got.Status)

	// The call agent reports back asynchronously
	require.NoError(t, f.uc.HandleOutcome(task.ID, true, "call answered, follow-up booked"))
	got, _ = f.tasks.FindByID(task.ID)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
	require.NotNil(t, got.ResultSummary)
	assert.Contains(t, *got.ResultSummary, "follow-up")
}

func TestDispatchFailureSchedulesRetry(t *testing.T) {
	f := newFixture(testLead("l1"))
	f.email.err = errors.New("smtp refused")

	past := time.Now().Add(-time.Minute)
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{
		LeadID: "l1", Channel: domain.ChannelEmail, ScheduledAt: &past,
	})
	require.NoError(t, err)
	_, err = f.uc.ApproveTask(context.Background(), "c1", task.ID)
	require.NoError(t, err)

	got, _ := f.tasks.FindByID(task.ID)
	assert.Equal(t, domain.TaskStatusRetryPending, got.Status)
	assert.Equal(t, 1, got.Attempts)
	require.NotNil(t, got.NextRetryAt)
	assert.Contains(t, got.LastError, "smtp refused")
}

func TestDispatchExhaustsAttempts(t *testing.T) {
	f := newFixture(testLead("l1"))
	f.email.err = errors.New("smtp refused")

	past := time.Now().Add(-time.Minute)
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{
		LeadID: "l1", Channel: domain.ChannelEmail, ScheduledAt: &past,
	})
	require.NoError(t, err)

	_, _ = f.uc.ApproveTask(context.Background(), "c1", task.ID)
	for i := 0; i < 2; i++ {
		_ = f.uc.Dispatch(context.Background(), task.ID)
	}

	got, _ := f.tasks.FindByID(task.ID)
	assert.Equal(t, domain.TaskStatusFailed, got.Status)
	assert.Equal(t, 3, got.Attempts)

	lead, _ := f.leads.FindByID("l1")
	assert.Nil(t, lead.ActiveTaskID)
	assert.Equal(t, leaddomain.LeadStatusInOutreach, lead.Status)
}

func TestRetryFailedTask(t *testing.T) {
	f := newFixture(testLead("l1"))
	f.email.err = errors.New("smtp refused")

	past := time.Now().Add(-time.Minute)
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{
		LeadID: "l1", Channel: domain.ChannelEmail, ScheduledAt: &past,
	})
	require.NoError(t, err)
	_, _ = f.uc.ApproveTask(context.Background(), "c1", task.ID)
	for i := 0; i < 2; i++ {
		_ = f.uc.Dispatch(context.Background(), task.ID)
	}

	restored, err := f.uc.RetryTask("c1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusScheduled, restored.Status)
	assert.Equal(t, 0, restored.Attempts)
	assert.Empty(t, restored.LastError)

	lead, _ := f.leads.FindByID("l1")
	require.NotNil(t, lead.ActiveTaskID)
	assert.Equal(t, task.ID, *lead.ActiveTaskID)
}

func TestRetryGuard(t *testing.T) {
	f := newFixture(testLead("l1"))
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	_, err = f.uc.RetryTask("c1", task.ID)
	assert.True(t, apperrors.IsInvalidStateTransition(err))
}

func TestCancelWithBlock(t *testing.T) {
	f := newFixture(testLead("l1"))
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	require.NoError(t, f.uc.CancelTask("c1", task.ID, true, "asked to stop"))

	got, _ := f.tasks.FindByID(task.ID)
	assert.Equal(t, domain.TaskStatusCancelled, got.Status)

	blocked, _ := f.blocks.IsBlocked("c1", "l1", domain.ChannelVoice)
	assert.True(t, blocked)

	lead, _ := f.leads.FindByID("l1")
	assert.Nil(t, lead.ActiveTaskID)
}

func TestRestoreTask(t *testing.T) {
	f := newFixture(testLead("l1"))
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)
	require.NoError(t, f.uc.CancelTask("c1", task.ID, false, ""))

	restored, err := f.uc.RestoreTask("c1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusWaitingApproval, restored.Status)

	lead, _ := f.leads.FindByID("l1")
	require.NotNil(t, lead.ActiveTaskID)
	assert.Equal(t, task.ID, *lead.ActiveTaskID)
}

func TestMarkDone(t *testing.T) {
	f := newFixture(testLead("l1"))
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	require.NoError(t, f.uc.MarkDone("c1", task.ID, "handled over the phone"))

	got, _ := f.tasks.FindByID(task.ID)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)

	lead, _ := f.leads.FindByID("l1")
	assert.Equal(t, leaddomain.LeadStatusContacted, lead.Status)
}

func TestMutationsOnTerminalTaskRejected(t *testing.T) {
	f := newFixture(testLead("l1"))
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)
	require.NoError(t, f.uc.CancelTask("c1", task.ID, false, ""))

	_, err = f.uc.SendNow("c1", task.ID)
	assert.True(t, apperrors.IsInvalidStateTransition(err))

	_, err = f.uc.EditTask("c1", task.ID, nil, nil, nil)
	assert.True(t, apperrors.IsInvalidStateTransition(err))

	err = f.uc.CancelTask("c1", task.ID, false, "")
	assert.True(t, apperrors.IsInvalidStateTransition(err), "double cancel must not double-apply")
}

func TestTaskOwnershipEnforced(t *testing.T) {
	f := newFixture(testLead("l1"))
	task, err := f.uc.AdmitAndSchedule(context.Background(), "c1", CreateTaskInput{LeadID: "l1"})
	require.NoError(t, err)

	_, err = f.uc.GetTask("other-consultant", task.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
