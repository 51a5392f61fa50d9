package store

import (
	"alcyxob/swimtrack/internal/service"
	"context"
	"sync"
	"time"
)

// Manager hands out one Store per authenticated user session, keyed by the
// account email. It is the auth-state observer: subscribing it to the auth
// service makes every successful login or signup hydrate the matching
// store in the background.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
	deps   Deps
}

// NewManager creates a store manager.
func NewManager(deps Deps) *Manager {
	return &Manager{
		stores: make(map[string]*Store),
		deps:   deps,
	}
}

// Get returns the session store for an email, creating it on first use.
func (m *Manager) Get(email string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stores[email]
	if !ok {
		st = New(m.deps)
		m.stores[email] = st
	}
	return st
}

// HandleAuthEvent hydrates the session store for a freshly authenticated
// identity. Registered with AuthService.Subscribe; runs detached from the
// login call that triggered it.
func (m *Manager) HandleAuthEvent(event service.AuthEvent) {
	st := m.Get(event.Email)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st.FetchUserProfile(ctx, event.AccountID, event.Email)
}
