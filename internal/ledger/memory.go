package ledger

import (
	"context"
	"sync"
)

// Memory is an in-memory Ledger implementation. Per the re-architecture
// guidance this module is grounded on (spec.md §9 Design Note 2), production
// code has exactly one Ledger implementation, the Redis-backed Store; Memory
// exists solely so unit tests can exercise the Selector and Fetch Pipeline
// without a live Redis instance.
type Memory struct {
	mu     sync.Mutex
	usage  map[string]int64
	errors map[string]int64
}

// NewMemory creates an empty in-memory Ledger.
func NewMemory() *Memory {
	return &Memory{
		usage:  make(map[string]int64),
		errors: make(map[string]int64),
	}
}

func (m *Memory) IncrementUsage(_ context.Context, credID string, day DayKey) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := usageKey(credID, day)
	m.usage[key]++
	return m.usage[key], nil
}

func (m *Memory) IncrementError(_ context.Context, credID string, day DayKey) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := errorsKey(credID, day)
	m.errors[key]++
	return m.errors[key], nil
}

func (m *Memory) GetUsage(_ context.Context, credID string, day DayKey) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage[usageKey(credID, day)], nil
}

func (m *Memory) GetErrors(_ context.Context, credID string, day DayKey) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[errorsKey(credID, day)], nil
}

func (m *Memory) ListAvailable(_ context.Context, credIDs []string, day DayKey) ([]CredentialUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]CredentialUsage, len(credIDs))
	for i, id := range credIDs {
		rows[i] = CredentialUsage{
			CredentialID: id,
			Usage:        m.usage[usageKey(id, day)],
			Errors:       m.errors[errorsKey(id, day)],
		}
	}
	return rows, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = make(map[string]int64)
	m.errors = make(map[string]int64)
	return nil
}

var _ Ledger = (*Memory)(nil)
