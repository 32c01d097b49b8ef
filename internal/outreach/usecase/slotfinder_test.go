package usecase

import (
	"errors"
	"testing"
	"time"

	"outreach-backend/internal/apperrors"
	"outreach-backend/internal/outreach/domain"
	quotadomain "outreach-backend/internal/quota/domain"
)

// fakeSchedule answers conflict queries from a fixed list of booked
// timestamps.
type fakeSchedule struct {
	booked []time.Time
	err    error
}

func (f *fakeSchedule) CountScheduledBetween(consultantID string, channel domain.Channel, from, to time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, b := range f.booked {
		if !b.Before(from) && !b.After(to) {
			n++
		}
	}
	return n, nil
}

func voicePolicy() quotadomain.ChannelPolicy {
	return quotadomain.DefaultPolicy("voice") // 30min interval, 08:00-20:00, Mon-Fri
}

// Monday 2026-08-24 in UTC.
func monday(hour, min int) time.Time {
	return time.Date(2026, 8, 24, hour, min, 0, 0, time.UTC)
}

func TestNextSlotAvoidsConflict(t *testing.T) {
	now := monday(9, 55)
	// 09:55 + 5m base delay puts the first candidate at 10:00, which is
	// taken; the finder must move at least a full interval away.
	sched := &fakeSchedule{booked: []time.Time{monday(10, 0)}}
	finder := NewSlotFinder(sched)

	slot, err := finder.NextSlot("c1", domain.ChannelVoice, 0, voicePolicy(), time.UTC, false, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gap := slot.Sub(monday(10, 0))
	if gap < 0 {
		gap = -gap
	}
	if gap < 30*time.Minute {
		t.Errorf("slot %s is within 30m of the booked 10:00 call", slot.Format(time.RFC3339))
	}
}

func TestNextSlotOrdinalSpacing(t *testing.T) {
	now := monday(9, 0)
	finder := NewSlotFinder(&fakeSchedule{})

	first, err := finder.NextSlot("c1", domain.ChannelVoice, 0, voicePolicy(), time.UTC, false, now)
	if err != nil {
		t.Fatal(err)
	}
	third, err := finder.NextSlot("c1", domain.ChannelVoice, 2, voicePolicy(), time.UTC, false, now)
	if err != nil {
		t.Fatal(err)
	}
	if third.Sub(first) != 60*time.Minute {
		t.Errorf("ordinal 2 should sit two intervals after ordinal 0, got %s and %s", first, third)
	}
}

func TestNextSlotClampsBeforeOpen(t *testing.T) {
	now := monday(6, 0)
	finder := NewSlotFinder(&fakeSchedule{})

	slot, err := finder.NextSlot("c1", domain.ChannelVoice, 0, voicePolicy(), time.UTC, false, now)
	if err != nil {
		t.Fatal(err)
	}
	if !slot.Equal(monday(8, 0)) {
		t.Errorf("pre-open candidate should snap to 08:00, got %s", slot)
	}
}

func TestNextSlotRollsPastClose(t *testing.T) {
	// Friday 19:58 + base delay lands past close; Saturday and Sunday
	// are off days, so the slot must land Monday at the Monday open.
	friday := time.Date(2026, 8, 28, 19, 58, 0, 0, time.UTC)
	finder := NewSlotFinder(&fakeSchedule{})

	slot, err := finder.NextSlot("c1", domain.ChannelVoice, 0, voicePolicy(), time.UTC, false, friday)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)
	if !slot.Equal(want) {
		t.Errorf("expected Monday 08:00, got %s", slot)
	}
}

func TestNextSlotDegradesWhenSaturated(t *testing.T) {
	now := monday(9, 0)
	// Book every half hour for the whole day so all 20 attempts conflict.
	sched := &fakeSchedule{}
	for i := 0; i < 48; i++ {
		sched.booked = append(sched.booked, monday(8, 0).Add(time.Duration(i)*30*time.Minute))
	}
	finder := NewSlotFinder(sched)

	slot, err := finder.NextSlot("c1", domain.ChannelVoice, 0, voicePolicy(), time.UTC, false, now)
	if err != nil {
		t.Fatalf("degraded mode must still return a slot: %v", err)
	}
	if slot.IsZero() {
		t.Error("degraded slot is zero")
	}
}

func TestNextSlotStrictSurfacesNoSlot(t *testing.T) {
	now := monday(9, 0)
	sched := &fakeSchedule{}
	for i := 0; i < 48; i++ {
		sched.booked = append(sched.booked, monday(8, 0).Add(time.Duration(i)*30*time.Minute))
	}
	finder := NewSlotFinder(sched)

	_, err := finder.NextSlot("c1", domain.ChannelVoice, 0, voicePolicy(), time.UTC, true, now)
	if !errors.Is(err, apperrors.ErrNoSlotFound) {
		t.Errorf("expected ErrNoSlotFound, got %v", err)
	}
}

func TestNextSlotPropagatesStoreError(t *testing.T) {
	finder := NewSlotFinder(&fakeSchedule{err: errors.New("db down")})

	_, err := finder.NextSlot("c1", domain.ChannelVoice, 0, voicePolicy(), time.UTC, false, monday(9, 0))
	if err == nil {
		t.Error("store error must propagate")
	}
}
