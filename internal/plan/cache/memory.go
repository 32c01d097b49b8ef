package cache

import (
	"log"
	"sync"
	"time"

	"outreach-backend/internal/plan/domain"
)

// sweepInterval is how often the background sweep runs.
const sweepInterval = 5 * time.Minute

// MemoryStore is the in-process plan cache: a mutexed map with a
// background TTL sweep.
type MemoryStore struct {
	mu       sync.RWMutex
	plans    map[string]*domain.Plan
	stopChan chan struct{}
}

// NewMemoryStore creates a MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		plans:    make(map[string]*domain.Plan),
		stopChan: make(chan struct{}),
	}
}

func (s *MemoryStore) Put(plan *domain.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = plan
	return nil
}

func (s *MemoryStore) Get(planID string) (*domain.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[planID]
	if !ok || plan.Expired(time.Now()) {
		return nil, nil
	}
	return plan, nil
}

func (s *MemoryStore) Delete(planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, planID)
	return nil
}

func (s *MemoryStore) Sweep() error {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, plan := range s.plans {
		if plan.Expired(now) {
			delete(s.plans, id)
		}
	}
	return nil
}

// StartSweeper runs the periodic TTL sweep until Stop is called.
func (s *MemoryStore) StartSweeper() {
	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Sweep(); err != nil {
					log.Printf("[PlanCache] sweep failed: %v", err)
				}
			case <-s.stopChan:
				return
			}
		}
	}()
	log.Println("[PlanCache] TTL sweeper started")
}

// Stop terminates the background sweeper.
func (s *MemoryStore) Stop() {
	close(s.stopChan)
}
