package activity

import (
	"context"
	"sync"
	"time"

	"github.com/ayase/tomodachi/internal/infrastructure/metrics"
	"github.com/ayase/tomodachi/internal/services/watermark"
)

// idleSessionCycles is how many poll intervals a session may go unread
// before its poller is stopped and the session evicted
const idleSessionCycles = 20

// Manager owns one session and poller per active user. Sessions are created
// lazily on first access, torn down explicitly via Remove (logout, user
// switch) and reaped automatically once nobody has read them for a while, so
// the registry cannot accumulate pollers for users who walked away.
type Manager struct {
	aggregator *Aggregator
	watermarks watermark.ServiceInterface
	exporter   *metrics.PrometheusExporter
	interval   time.Duration
	idleTTL    time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*managedSession
	baseCtx context.Context
	stop    chan struct{}
	closed  bool
}

type managedSession struct {
	session    *Session
	poller     *Poller
	lastAccess time.Time
}

// NewManager creates a session manager. interval is the poll period for every
// user session; exporter may be nil.
func NewManager(ctx context.Context, aggregator *Aggregator, watermarks watermark.ServiceInterface, interval time.Duration, exporter *metrics.PrometheusExporter) *Manager {
	m := &Manager{
		aggregator: aggregator,
		watermarks: watermarks,
		exporter:   exporter,
		interval:   interval,
		idleTTL:    idleSessionCycles * interval,
		now:        time.Now,
		entries:    make(map[string]*managedSession),
		baseCtx:    ctx,
		stop:       make(chan struct{}),
	}
	go m.reap()
	return m
}

// Session returns the user's session, creating it and starting its poller on
// first access
func (m *Manager) Session(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[userID]; ok {
		entry.lastAccess = m.now()
		return entry.session
	}

	session := NewSession(userID, m.aggregator, m.watermarks, m.exporter)
	entry := &managedSession{
		session:    session,
		poller:     NewPoller(session.Refresh, m.interval, m.exporter),
		lastAccess: m.now(),
	}
	m.entries[userID] = entry
	if !m.closed {
		entry.poller.Start(m.baseCtx)
	}
	return entry.session
}

// Remove tears down the user's session and stops its poller. Called when the
// user's client session ends; the next access reinitializes from scratch.
func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	entry, ok := m.entries[userID]
	if ok {
		delete(m.entries, userID)
	}
	m.mu.Unlock()

	if ok {
		entry.poller.Stop()
	}
}

// reap periodically evicts sessions nobody has read for idleTTL
func (m *Manager) reap() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *Manager) evictIdle() {
	m.mu.Lock()
	cutoff := m.now().Add(-m.idleTTL)
	var idle []*managedSession
	for id, entry := range m.entries {
		if entry.lastAccess.Before(cutoff) {
			delete(m.entries, id)
			idle = append(idle, entry)
		}
	}
	m.mu.Unlock()

	for _, entry := range idle {
		entry.poller.Stop()
	}
}

// Trigger requests an immediate refresh of the user's session if one exists.
// Called after mutations so badges update without waiting for the next tick.
func (m *Manager) Trigger(userID string) {
	m.mu.Lock()
	entry, ok := m.entries[userID]
	m.mu.Unlock()
	if ok {
		entry.poller.Trigger()
	}
}

// Shutdown stops the reaper and every poller, waiting for in-flight cycles
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.stop)
	entries := make([]*managedSession, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}
	m.mu.Unlock()

	for _, entry := range entries {
		entry.poller.Stop()
	}
}
