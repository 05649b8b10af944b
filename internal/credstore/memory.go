// ABOUTME: In-memory credential store for tests and degraded sessions
// ABOUTME: Holds the token and theme flag for the life of the process

package credstore

import "sync"

// MemoryStore keeps the token and theme in process memory only
type MemoryStore struct {
	mu    sync.Mutex
	token string
	dark  bool
}

// NewMemory returns an empty in-memory store
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *MemoryStore) ClearToken() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}

func (m *MemoryStore) ClearTokenIf(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" || m.token != token {
		return false
	}
	m.token = ""
	return true
}

func (m *MemoryStore) DarkMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dark
}

func (m *MemoryStore) SetDarkMode(dark bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dark = dark
}
