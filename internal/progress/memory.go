package progress

import (
	"context"
	"sync"
	"time"

	"github.com/nayidisha/disha/internal/roadmap"
)

// MemoryRepository keeps records in process memory. It backs anonymous
// runs and tests.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]*Record
	users   map[string]UserProfile
	now     func() time.Time
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: map[string]*Record{},
		users:   map[string]UserProfile{},
		now:     time.Now,
	}
}

func (m *MemoryRepository) Get(_ context.Context, userID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[userID].clone(), nil
}

func (m *MemoryRepository) SaveRoadmap(_ context.Context, userID string, r roadmap.Roadmap, sel roadmap.Selections) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := NewRecord(userID, r, sel, m.now().UTC())
	m.records[userID] = rec
	return rec.clone(), nil
}

func (m *MemoryRepository) UpdateModuleProgress(_ context.Context, userID, moduleID string, u ModuleUpdate) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	rec.ApplyModuleUpdate(moduleID, u, m.now().UTC())
	return rec.clone(), nil
}

func (m *MemoryRepository) SetCurrentModule(_ context.Context, userID, moduleID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	rec.CurrentModule = moduleID
	rec.UpdatedAt = m.now().UTC()
	return rec.clone(), nil
}

func (m *MemoryRepository) SyncUser(_ context.Context, p UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[p.UID] = p
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, userID)
	delete(m.users, userID)
	return nil
}
