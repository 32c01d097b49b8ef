package cache

import (
	"outreach-backend/internal/plan/domain"
)

// Store is the plan cache backend. Implementations must return
// (nil, nil) for a missing or expired plan; the usecase maps that onto
// the stale-plan error.
type Store interface {
	Put(plan *domain.Plan) error
	Get(planID string) (*domain.Plan, error)
	Delete(planID string) error

	// Sweep drops expired plans. Backends with native TTL may make this
	// a no-op.
	Sweep() error
}
