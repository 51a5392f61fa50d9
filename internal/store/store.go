// Package store holds the per-session application state: the authenticated
// user's profile, the loaded swim/session/goal collections and the active
// display filter. It is the only code path allowed to read or write swim,
// user and session data on behalf of a session.
//
// Every mutation goes through a single mutex, held for the whole action
// including its backend round trips. That is deliberate: it replaces the
// one-callback-at-a-time guarantee of an event-loop runtime with an
// explicit single-writer rule, so a profile refresh triggered by an auth
// event can never interleave with an in-flight user edit.
package store

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"alcyxob/swimtrack/internal/service"
	"sync"

	"github.com/rs/zerolog"
)

// Deps bundles the backend clients a store needs.
type Deps struct {
	Auth        service.AuthService
	UserRepo    repository.UserRepository
	SwimRepo    repository.SwimRepository
	GoalRepo    repository.GoalRepository
	SessionRepo repository.SessionRepository
	Strava      service.StravaService
	Log         zerolog.Logger
}

// Store is the state container for one authenticated session.
type Store struct {
	mu      sync.Mutex
	version uint64
	memos   map[string]memoEntry

	auth        service.AuthService
	userRepo    repository.UserRepository
	swimRepo    repository.SwimRepository
	goalRepo    repository.GoalRepository
	sessionRepo repository.SessionRepository
	strava      service.StravaService
	log         zerolog.Logger

	currentUser *domain.User
	swims       []domain.Swim
	sessions    []domain.StravaSession
	goals       []domain.GoalTime
	roster      []domain.User
	filter      domain.Filter
	loading     bool

	listeners []func()
}

// New constructs an empty store. State is populated by FetchUserProfile,
// normally triggered through the auth-state observer.
func New(deps Deps) *Store {
	return &Store{
		memos:       make(map[string]memoEntry),
		auth:        deps.Auth,
		userRepo:    deps.UserRepo,
		swimRepo:    deps.SwimRepo,
		goalRepo:    deps.GoalRepo,
		sessionRepo: deps.SessionRepo,
		strava:      deps.Strava,
		log:         deps.Log.With().Str("component", "store").Logger(),
		filter:      domain.Filter{SortOrder: domain.SortByDate},
		loading:     true,
	}
}

// Subscribe registers a listener invoked after every state change.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// bump marks the state as changed: memoized selectors are invalidated and
// listeners notified. Callers must hold s.mu.
func (s *Store) bump() {
	s.version++
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	go func() {
		for _, fn := range listeners {
			fn()
		}
	}()
}

type memoEntry struct {
	version uint64
	value   interface{}
}

// memoize returns the cached selector value when the state has not changed
// since it was computed. Callers must hold s.mu.
func (s *Store) memoize(key string, compute func() interface{}) interface{} {
	if entry, ok := s.memos[key]; ok && entry.version == s.version {
		return entry.value
	}
	value := compute()
	s.memos[key] = memoEntry{version: s.version, value: value}
	return value
}

// CurrentUser returns the hydrated profile, or nil before hydration.
func (s *Store) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser
}

// Loading reports whether initial hydration is still in progress.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Filter returns a copy of the active filter state.
func (s *Store) Filter() domain.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Sessions returns the loaded Strava sessions.
func (s *Store) Sessions() []domain.StravaSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

// Goals returns the loaded goal times.
func (s *Store) Goals() []domain.GoalTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals
}

// Roster returns the loaded user roster (admin and coach sessions only).
func (s *Store) Roster() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster
}
