package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the outreach core. Handlers map these onto HTTP
// status codes; batch callers record them per lead and keep going.
var (
	// ErrAdmissionDenied means the daily quota for (owner, channel) is
	// exhausted. Recoverable tomorrow, never retried automatically.
	ErrAdmissionDenied = errors.New("daily quota exhausted")

	// ErrNoSlotFound means the slot finder exhausted its attempt bound
	// under the strict-slots policy.
	ErrNoSlotFound = errors.New("no conflict-free slot found")

	// ErrStaleOrUnknownPlan means the plan id is missing or TTL-expired.
	// The caller must regenerate the plan.
	ErrStaleOrUnknownPlan = errors.New("plan not found or expired")

	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// InvalidStateTransition is returned when a mutation is requested against
// a task not in an eligible status. It is always surfaced to the caller,
// never silently dropped.
type InvalidStateTransition struct {
	TaskID string
	From   string
	Op     string
}

func (e *InvalidStateTransition) Error() string {
	return fmt.Sprintf("task %s is not in a modifiable state for %s (current: %s)", e.TaskID, e.Op, e.From)
}

func NewInvalidStateTransition(taskID, from, op string) error {
	return &InvalidStateTransition{TaskID: taskID, From: from, Op: op}
}

// IsInvalidStateTransition reports whether err is an InvalidStateTransition.
func IsInvalidStateTransition(err error) bool {
	var ist *InvalidStateTransition
	return errors.As(err, &ist)
}

// ProviderFailure wraps a delivery provider rejection or error. It maps
// the task to failed, decrements no shared counters, and leaves the task
// eligible for the retry transition.
type ProviderFailure struct {
	Channel string
	Err     error
}

func (e *ProviderFailure) Error() string {
	return fmt.Sprintf("%s provider failure: %v", e.Channel, e.Err)
}

func (e *ProviderFailure) Unwrap() error { return e.Err }

func NewProviderFailure(channel string, err error) error {
	return &ProviderFailure{Channel: channel, Err: err}
}
