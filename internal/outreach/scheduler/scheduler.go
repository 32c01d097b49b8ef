package scheduler

import (
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"outreach-backend/internal/outreach/repository"
	"outreach-backend/internal/queue"
)

// dueBatchSize caps how many due tasks one tick publishes.
const dueBatchSize = 50

// DispatchJob is the payload placed on the dispatch topic.
type DispatchJob struct {
	TaskID string `json:"task_id"`
}

// OutreachScheduler scans for due tasks and pushes them onto the
// dispatch queue.
type OutreachScheduler struct {
	taskRepo repository.TaskRepository
	q        queue.Queue
	interval time.Duration
	stopChan chan struct{}

	// processing guards against overlapping ticks when a scan outlives
	// the interval.
	processing atomic.Bool
}

// NewOutreachScheduler creates a new scheduler
func NewOutreachScheduler(taskRepo repository.TaskRepository, q queue.Queue) *OutreachScheduler {
	return &OutreachScheduler{
		taskRepo: taskRepo,
		q:        q,
		interval: 1 * time.Minute,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *OutreachScheduler) Start() {
	log.Println("[OutreachScheduler] Starting dispatch scheduler (interval: 1 minute)")

	go func() {
		// Run immediately on start
		s.tick()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.stopChan:
				log.Println("[OutreachScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *OutreachScheduler) Stop() {
	close(s.stopChan)
}

// tick publishes every due task id onto the dispatch topic.
func (s *OutreachScheduler) tick() {
	if !s.processing.CompareAndSwap(false, true) {
		log.Println("[OutreachScheduler] previous tick still running, skipping")
		return
	}
	defer s.processing.Store(false)

	now := time.Now()
	tasks, err := s.taskRepo.FindDue(now, dueBatchSize)
	if err != nil {
		log.Printf("[OutreachScheduler] Error finding due tasks: %v", err)
		return
	}
	if len(tasks) == 0 {
		return
	}

	log.Printf("[OutreachScheduler] Found %d due tasks", len(tasks))
	for _, task := range tasks {
		payload, err := json.Marshal(DispatchJob{TaskID: task.ID})
		if err != nil {
			log.Printf("[OutreachScheduler] Error marshaling job for task %s: %v", task.ID, err)
			continue
		}
		if err := s.q.Publish(queue.TopicDispatch, payload); err != nil {
			log.Printf("[OutreachScheduler] Error publishing task %s: %v", task.ID, err)
		}
	}
}
