package scheduler

import (
	"context"
	"encoding/json"
	"log"

	"outreach-backend/internal/apperrors"
	"outreach-backend/internal/outreach/usecase"
	"outreach-backend/internal/queue"
)

// Dispatcher consumes dispatch jobs and drives task execution.
type Dispatcher struct {
	outreach usecase.OutreachUsecase
	q        queue.Queue
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(outreach usecase.OutreachUsecase, q queue.Queue) *Dispatcher {
	return &Dispatcher{outreach: outreach, q: q}
}

// Start subscribes to the dispatch topic.
func (d *Dispatcher) Start() error {
	return d.q.Subscribe(queue.TopicDispatch, func(payload []byte) error {
		var job DispatchJob
		if err := json.Unmarshal(payload, &job); err != nil {
			log.Printf("[Dispatcher] invalid job payload: %v", err)
			return nil // malformed, never retryable
		}

		err := d.outreach.Dispatch(context.Background(), job.TaskID)
		if err == nil {
			return nil
		}
		// Another worker claimed it, or retry accounting is already
		// recorded on the task itself; requeueing would double-send.
		if apperrors.IsInvalidStateTransition(err) {
			return nil
		}
		log.Printf("[Dispatcher] dispatch of %s failed: %v", job.TaskID, err)
		return nil
	})
}
