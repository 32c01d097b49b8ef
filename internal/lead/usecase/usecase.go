package usecase

import (
	"log"
	"time"

	"outreach-backend/internal/lead/domain"
	leadrepo "outreach-backend/internal/lead/repository"
	outreachdomain "outreach-backend/internal/outreach/domain"
	outreachrepo "outreach-backend/internal/outreach/repository"
	quotarepo "outreach-backend/internal/quota/repository"
)

// candidateFetchLimit bounds how many leads one classification pass
// considers.
const candidateFetchLimit = 200

// LeadUsecase exposes lead listing and the actionability surface
type LeadUsecase interface {
	ListLeads(consultantID string, status *domain.LeadStatus, limit, offset int) ([]*domain.Lead, int64, error)
	GetLead(consultantID, leadID string) (*domain.Lead, error)
	CreateLead(lead *domain.Lead) error

	// ListActionable runs the cooldown classifier over the consultant's
	// candidate leads
	ListActionable(consultantID string) (*ClassifyResult, error)
}

type leadUsecase struct {
	leadRepo   leadrepo.LeadRepository
	taskRepo   outreachrepo.TaskRepository
	blockRepo  outreachrepo.BlockRepository
	configRepo quotarepo.ConfigRepository
}

// NewLeadUsecase creates a new LeadUsecase
func NewLeadUsecase(leadRepo leadrepo.LeadRepository, taskRepo outreachrepo.TaskRepository,
	blockRepo outreachrepo.BlockRepository, configRepo quotarepo.ConfigRepository) LeadUsecase {
	return &leadUsecase{
		leadRepo:   leadRepo,
		taskRepo:   taskRepo,
		blockRepo:  blockRepo,
		configRepo: configRepo,
	}
}

func (u *leadUsecase) ListLeads(consultantID string, status *domain.LeadStatus, limit, offset int) ([]*domain.Lead, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.leadRepo.FindByConsultant(consultantID, status, limit, offset)
}

func (u *leadUsecase) GetLead(consultantID, leadID string) (*domain.Lead, error) {
	lead, err := u.leadRepo.FindByID(leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil || lead.ConsultantID != consultantID {
		return nil, nil
	}
	return lead, nil
}

func (u *leadUsecase) CreateLead(lead *domain.Lead) error {
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}
	return u.leadRepo.Create(lead)
}

func (u *leadUsecase) ListActionable(consultantID string) (*ClassifyResult, error) {
	config, err := u.configRepo.Get(consultantID)
	if err != nil {
		return nil, err
	}

	candidates, err := u.leadRepo.FindCandidates(consultantID, candidateFetchLimit)
	if err != nil {
		return nil, err
	}

	activeTasks := make(map[string][]*outreachdomain.OutreachTask, len(candidates))
	for _, lead := range candidates {
		tasks, err := u.taskRepo.FindActiveByLead(lead.ID)
		if err != nil {
			return nil, err
		}
		if len(tasks) > 0 {
			activeTasks[lead.ID] = tasks
		}
	}

	blocked, err := u.blockRepo.BlockedLeadIDs(consultantID)
	if err != nil {
		return nil, err
	}

	result := Classify(candidates, activeTasks, blocked, config, time.Now())
	log.Printf("[LeadUsecase] classified %d candidates for %s: %d actionable, skips=%v",
		len(candidates), consultantID, len(result.Actionable), result.SkipReasons)
	return result, nil
}
