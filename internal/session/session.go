// Package session tracks live paginators, serializing their interactions
// and enforcing the inactivity timeout.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eachlabs/pager/internal/pager"
)

// Session is one live paginator: a view plus the single-flight lock and
// inactivity timer the view itself does not implement.
type Session struct {
	ID string

	mgr          *Manager
	mu           sync.Mutex
	view         *pager.View
	timer        *time.Timer
	lastActivity time.Time
}

// Manager tracks sessions by ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration
}

// NewManager creates a manager. A zero timeout disables the inactivity
// timer.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

// NewSession reserves a session ID. The ID exists before the first send so
// surfaces can stamp it into control metadata.
func (m *Manager) NewSession() *Session {
	return &Session{ID: uuid.New().String(), mgr: m}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Dispatch routes one interaction to its session. Interactions on the same
// session are serialized; the inactivity timer is reset on each one.
func (m *Manager) Dispatch(ctx context.Context, id string, in pager.Interaction) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session: unknown session %q", id)
	}
	return s.dispatch(ctx, in)
}

// Begin attaches the view to the session, performs the initial send and
// starts the inactivity timer. A view that stopped itself on the first
// render is not tracked.
func (s *Session) Begin(ctx context.Context, view *pager.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != nil {
		return fmt.Errorf("session: %s already started", s.ID)
	}
	if err := view.Start(ctx); err != nil {
		return err
	}
	s.view = view

	if view.Stopped() {
		return nil
	}
	s.mgr.register(s)
	s.lastActivity = time.Now()
	if s.mgr.timeout > 0 {
		s.timer = time.AfterFunc(s.mgr.timeout, s.fireTimeout)
	}
	return nil
}

func (s *Session) dispatch(ctx context.Context, in pager.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.view.HandleInteraction(ctx, in)
	if s.view.Stopped() {
		if s.timer != nil {
			s.timer.Stop()
		}
		s.mgr.remove(s.ID)
		return err
	}

	// Activity counts from when the interaction finished, so a slow
	// acknowledgment does not eat into the inactivity window.
	s.lastActivity = time.Now()
	if s.timer != nil {
		s.timer.Reset(s.mgr.timeout)
	}
	return err
}

func (s *Session) fireTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view == nil || s.view.Stopped() {
		s.mgr.remove(s.ID)
		return
	}

	// The timer may have fired while an interaction held the lock; the
	// interaction restarted the window, so push the deadline out instead
	// of timing out a session that was just active.
	if remaining := s.mgr.timeout - time.Since(s.lastActivity); remaining > 0 {
		s.timer.Reset(remaining)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.view.OnTimeout(ctx); err != nil {
		fmt.Printf("[session] %s timeout action failed: %v\n", s.ID, err)
	}
	s.mgr.remove(s.ID)
}

func (m *Manager) register(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
