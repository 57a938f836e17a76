package tracker

import (
	"log"
	"sync"
	"time"

	"mamaezen/api/store"
)

// Manager keys Tracker instances by session. Each session gets its own
// in-memory session store; durable state is a per-visitor scoped view over
// the shared durable backend. Idle sessions are swept after the TTL, which
// stands in for the browser session ending without an unload signal.
type Manager struct {
	mu           sync.Mutex
	cfg          Config
	durable      store.KV
	destinations []Destination
	sessions     map[string]*managedSession
	ttl          time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type managedSession struct {
	tracker  *Tracker
	lastSeen time.Time
}

const defaultSessionTTL = 30 * time.Minute

// NewManager creates a Manager and starts its sweep loop.
func NewManager(cfg Config, durable store.KV, destinations []Destination) *Manager {
	m := &Manager{
		cfg:          cfg,
		durable:      durable,
		destinations: destinations,
		sessions:     make(map[string]*managedSession),
		ttl:          defaultSessionTTL,
		stop:         make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Tracker returns the tracker for a session, creating one on first contact.
// deviceKey scopes the durable store so each visitor keeps their own
// long-lived user id.
func (m *Manager) Tracker(sessionKey, deviceKey string) *Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ms, ok := m.sessions[sessionKey]; ok {
		ms.lastSeen = time.Now()
		return ms.tracker
	}

	t := New(m.cfg, store.NewMemoryKV(), store.Scoped(m.durable, deviceKey), m.destinations)
	m.sessions[sessionKey] = &managedSession{tracker: t, lastSeen: time.Now()}
	log.Printf("tracker session started: %s", sessionKey)
	return t
}

// Remove drops a session after its unload signal. The caller is expected to
// have emitted the exit summary already; Remove only tears down.
func (m *Manager) Remove(sessionKey string) {
	m.mu.Lock()
	ms, ok := m.sessions[sessionKey]
	delete(m.sessions, sessionKey)
	m.mu.Unlock()

	if ok {
		ms.tracker.Close()
		log.Printf("tracker session removed: %s", sessionKey)
	}
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

// sweep evicts sessions idle past the TTL, emitting their exit summary
// since no unload signal will arrive.
func (m *Manager) sweep(now time.Time) {
	m.mu.Lock()
	var expired []*managedSession
	for key, ms := range m.sessions {
		if now.Sub(ms.lastSeen) > m.ttl {
			expired = append(expired, ms)
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()

	for _, ms := range expired {
		ms.tracker.OnUnload()
		ms.tracker.Close()
	}
	if len(expired) > 0 {
		log.Printf("swept %d idle tracker sessions", len(expired))
	}
}

// Close stops the sweep loop and tears down every live session, emitting
// exit summaries.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	remaining := make([]*managedSession, 0, len(m.sessions))
	for key, ms := range m.sessions {
		remaining = append(remaining, ms)
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	for _, ms := range remaining {
		ms.tracker.OnUnload()
		ms.tracker.Close()
	}
}
