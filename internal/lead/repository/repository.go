package repository

import (
	"outreach-backend/internal/lead/domain"
)

// LeadRepository defines the interface for lead data access
type LeadRepository interface {
	// Create inserts a new lead (used by the import surface and seeds)
	Create(lead *domain.Lead) error

	// FindByID finds a lead by its ID, nil when absent
	FindByID(id string) (*domain.Lead, error)

	// FindByConsultant lists leads for a consultant, optionally filtered
	// by status, newest first
	FindByConsultant(consultantID string, status *domain.LeadStatus, limit, offset int) ([]*domain.Lead, int64, error)

	// FindByIDs fetches a set of leads belonging to the consultant
	FindByIDs(consultantID string, ids []string) ([]*domain.Lead, error)

	// FindCandidates returns non-terminal leads for a consultant, the
	// classifier's raw input set
	FindCandidates(consultantID string, limit int) ([]*domain.Lead, error)

	// Update persists a mutated lead
	Update(lead *domain.Lead) error

	// SetActiveTask atomically points the lead at its owning task and
	// status; a nil taskID clears the reference
	SetActiveTask(leadID string, taskID *string, status domain.LeadStatus) error

	// TouchActivity stamps LastActivityAt
	TouchActivity(leadID string) error
}
