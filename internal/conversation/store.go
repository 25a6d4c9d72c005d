// Package conversation — store.go: хранилище состояний в памяти процесса.
package conversation

import (
	"context"
	"sync"
)

// Store хранит состояние диалога по user ID.
// Get возвращает nil без ошибки, если диалога нет.
type Store interface {
	Get(ctx context.Context, userID int64) (*State, error)
	Save(ctx context.Context, userID int64, st *State) error
	Clear(ctx context.Context, userID int64) error
}

// MemoryStore — состояния в map под RWMutex (STATE_DRIVER=memory).
// Незавершённый диалог живёт до отмены или нового /start.
type MemoryStore struct {
	states map[int64]*State
	mu     sync.RWMutex
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]*State)}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[userID].Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, userID int64, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = st.Clone()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	return nil
}
