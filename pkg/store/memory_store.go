package store

import (
	"sync"

	"airtech/pkg/domain"
)

// MemoryStore keeps accounts and profiles in-process. It backs tests and
// single-node development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User           // key: normalized email
	profiles map[string][]domain.SavedProfile // key: owner email, insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		profiles: make(map[string][]domain.SavedProfile),
	}
}

// SaveUser registers a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = u
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[email]
	return u, ok, nil
}

// ListProfiles returns the owner's profiles in insertion order.
func (m *MemoryStore) ListProfiles(email string) ([]domain.SavedProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	saved := m.profiles[email]
	res := make([]domain.SavedProfile, len(saved))
	copy(res, saved)
	return res, nil
}

// AppendProfile adds a profile to the end of the owner's list.
func (m *MemoryStore) AppendProfile(email string, p domain.SavedProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[email] = append(m.profiles[email], p)
	return nil
}
