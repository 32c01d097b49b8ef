package repository

import (
	"sync"
)

// memoryLedger is an in-process Ledger used in tests and broker-less
// development runs. A single mutex keeps check-and-increment atomic.
type memoryLedger struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryLedger creates an in-memory Ledger
func NewMemoryLedger() Ledger {
	return &memoryLedger{counts: make(map[string]int)}
}

func ledgerKey(consultantID, channel, day string) string {
	return consultantID + "|" + channel + "|" + day
}

func (l *memoryLedger) Admit(consultantID, channel, day string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey(consultantID, channel, day)
	if l.counts[key] >= limit {
		return false, nil
	}
	l.counts[key]++
	return true, nil
}

func (l *memoryLedger) Remaining(consultantID, channel, day string, limit int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := limit - l.counts[ledgerKey(consultantID, channel, day)]
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
