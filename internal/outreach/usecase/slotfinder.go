package usecase

import (
	"log"
	"time"

	"outreach-backend/internal/apperrors"
	"outreach-backend/internal/outreach/domain"
	quotadomain "outreach-backend/internal/quota/domain"
)

const (
	// slotBaseDelay keeps freshly planned work a little in the future so
	// the approval surface can catch it before dispatch.
	slotBaseDelay = 5 * time.Minute

	// maxSlotAttempts bounds the greedy conflict search.
	maxSlotAttempts = 20
)

// scheduleCounter is the slice of the task repository the slot finder
// needs: how many items are already booked on a channel in a window.
type scheduleCounter interface {
	CountScheduledBetween(consultantID string, channel domain.Channel, from, to time.Time) (int64, error)
}

// SlotFinder allocates outreach timestamps inside the consultant's
// operating window, greedily avoiding items already on the calendar.
type SlotFinder struct {
	counter scheduleCounter
}

// NewSlotFinder creates a SlotFinder backed by the given schedule source
func NewSlotFinder(counter scheduleCounter) *SlotFinder {
	return &SlotFinder{counter: counter}
}

// NextSlot returns a timestamp for the ordinal-th item of a batch on the
// channel. The search is bounded: when every candidate within the bound
// conflicts, the last candidate is returned anyway unless strict is set,
// in which case ErrNoSlotFound is returned.
func (f *SlotFinder) NextSlot(consultantID string, channel domain.Channel, ordinal int,
	policy quotadomain.ChannelPolicy, loc *time.Location, strict bool, now time.Time) (time.Time, error) {

	interval := policy.Interval()
	candidate := clampToWindow(now.Add(slotBaseDelay+time.Duration(ordinal)*interval), policy, loc)

	for attempt := 0; attempt < maxSlotAttempts; attempt++ {
		count, err := f.counter.CountScheduledBetween(consultantID, channel,
			candidate.Add(-interval), candidate.Add(interval))
		if err != nil {
			return time.Time{}, err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = clampToWindow(candidate.Add(interval), policy, loc)
	}

	if strict {
		return time.Time{}, apperrors.ErrNoSlotFound
	}
	log.Printf("[SlotFinder] no conflict-free slot for %s/%s within %d attempts, accepting %s",
		consultantID, channel, maxSlotAttempts, candidate.Format(time.RFC3339))
	return candidate, nil
}

// clampToWindow snaps t into the policy's operating hours and day set.
// A rollover always lands on the new day's own open time.
func clampToWindow(t time.Time, policy quotadomain.ChannelPolicy, loc *time.Location) time.Time {
	t = t.In(loc)
	openH, openM := parseClock(policy.WorkingStart, 8, 0)
	closeH, closeM := parseClock(policy.WorkingEnd, 20, 0)

	open := time.Date(t.Year(), t.Month(), t.Day(), openH, openM, 0, 0, loc)
	close := time.Date(t.Year(), t.Month(), t.Day(), closeH, closeM, 0, 0, loc)

	if t.Before(open) {
		t = open
	} else if !t.Before(close) {
		next := t.AddDate(0, 0, 1)
		t = time.Date(next.Year(), next.Month(), next.Day(), openH, openM, 0, 0, loc)
	}

	// Roll forward to an operating day, landing on that day's open time
	for i := 0; i < 7 && !dayAllowed(t, policy.WorkingDays); i++ {
		next := t.AddDate(0, 0, 1)
		t = time.Date(next.Year(), next.Month(), next.Day(), openH, openM, 0, 0, loc)
	}
	return t
}

// dayAllowed checks t's ISO weekday (1=Mon..7=Sun) against the day set.
// An empty set allows every day.
func dayAllowed(t time.Time, days []int) bool {
	if len(days) == 0 {
		return true
	}
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}

// parseClock parses "HH:MM", falling back to the given defaults.
func parseClock(s string, defH, defM int) (int, int) {
	var h, m int
	if len(s) == 5 && s[2] == ':' {
		h = int(s[0]-'0')*10 + int(s[1]-'0')
		m = int(s[3]-'0')*10 + int(s[4]-'0')
		if h >= 0 && h < 24 && m >= 0 && m < 60 {
			return h, m
		}
	}
	return defH, defM
}
