package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"elevare.io/sitegen/internal/logger"
)

// Manager owns the live sessions, one per business. Opening a session
// fetches the business's quota once; subsequent quota updates come only
// from exchange responses.
type Manager struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	customizer Customizer
	scheduler  *Scheduler
	log        logger.Logger
}

func NewManager(customizer Customizer, charDelay time.Duration, log logger.Logger) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		customizer: customizer,
		scheduler:  NewScheduler(charDelay),
		log:        log,
	}
}

// Open returns the existing session for the business or creates one,
// seeding it with the current quota.
func (m *Manager) Open(ctx context.Context, businessID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[businessID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	quota, err := m.customizer.RemainingMessages(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quota for session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have opened the session while we fetched.
	if s, ok := m.sessions[businessID]; ok {
		return s, nil
	}
	s := New(businessID, m.customizer, m.scheduler, quota, m.log.WithFields(map[string]interface{}{
		"business_id": businessID,
	}))
	m.sessions[businessID] = s
	return s, nil
}

// CloseAll stops every session's timers. Used at shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}
