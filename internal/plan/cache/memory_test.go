package cache

import (
	"testing"
	"time"

	"outreach-backend/internal/plan/domain"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	store := NewMemoryStore()

	plan := &domain.Plan{ID: "p1", ConsultantID: "c1", CreatedAt: time.Now()}
	if err := store.Put(plan); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get("p1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != "p1" {
		t.Fatalf("expected plan p1, got %+v", got)
	}

	if err := store.Delete("p1"); err != nil {
		t.Fatal(err)
	}
	got, err = store.Get("p1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("deleted plan should be gone")
	}
}

func TestMemoryStoreMissingPlan(t *testing.T) {
	store := NewMemoryStore()
	got, err := store.Get("nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("missing plan must be nil, not an error")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()

	stale := &domain.Plan{ID: "old", CreatedAt: time.Now().Add(-domain.PlanTTL - time.Minute)}
	fresh := &domain.Plan{ID: "new", CreatedAt: time.Now()}
	store.Put(stale)
	store.Put(fresh)

	// Expired plans are invisible even before the sweep runs
	got, _ := store.Get("old")
	if got != nil {
		t.Error("expired plan must not be returned")
	}

	if err := store.Sweep(); err != nil {
		t.Fatal(err)
	}
	store.mu.RLock()
	_, stillThere := store.plans["old"]
	_, freshThere := store.plans["new"]
	store.mu.RUnlock()
	if stillThere {
		t.Error("sweep should drop expired plans")
	}
	if !freshThere {
		t.Error("sweep must keep fresh plans")
	}
}
