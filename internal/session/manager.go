package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobscraper-web/internal/view"
)

var (
	ErrNotFound = errors.New("view not found")
	ErrShutdown = errors.New("session manager is shut down")
)

// Factory builds a view for a fresh id.
type Factory func(id string) *view.View

type entry struct {
	view     *view.View
	lastSeen time.Time
	streams  int
}

// Manager keeps one View per browsing context. Views are dropped when closed
// or when idle longer than the configured timeout with no open event stream.
type Manager struct {
	mu      sync.Mutex
	views   map[string]*entry
	factory Factory
	idle    time.Duration
	now     func() time.Time
	log     *slog.Logger

	shutdown  bool
	closeOnce sync.Once
}

func NewManager(factory Factory, idle time.Duration, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		views:   make(map[string]*entry),
		factory: factory,
		idle:    idle,
		now:     time.Now,
		log:     log,
	}
}

// Create builds a new view and mounts it, which starts the fetch for the
// default role.
func (m *Manager) Create() (*view.View, error) {
	id := uuid.NewString()
	v := m.factory(id)

	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		v.Close()
		return nil, ErrShutdown
	}
	m.views[id] = &entry{view: v, lastSeen: m.now()}
	m.mu.Unlock()

	if _, err := v.Mount(); err != nil {
		m.Close(id)
		return nil, err
	}
	m.log.Debug("view created", "view", id)
	return v, nil
}

// Get returns the view and marks it as used.
func (m *Manager) Get(id string) (*view.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.views[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = m.now()
	return e.view, nil
}

// Attach pins the view while an event stream is open. The returned func
// releases it.
func (m *Manager) Attach(id string) (*view.View, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.views[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	e.streams++
	e.lastSeen = m.now()

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			e.streams--
			e.lastSeen = m.now()
		})
	}
	return e.view, release, nil
}

func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	e, ok := m.views[id]
	delete(m.views, id)
	m.mu.Unlock()

	if ok {
		e.view.Close()
	}
	return ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.views)
}

// Sweep closes idle views and reports how many went.
func (m *Manager) Sweep(ctx context.Context) error {
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	var stale []*view.View
	for id, e := range m.views {
		if e.streams == 0 && e.lastSeen.Before(cutoff) {
			stale = append(stale, e.view)
			delete(m.views, id)
		}
	}
	m.mu.Unlock()

	for _, v := range stale {
		v.Close()
	}
	if len(stale) > 0 {
		m.log.Info("idle views closed", "count", len(stale), "live", m.Len())
	}
	return ctx.Err()
}

// CloseAll closes every view and waits for their fetches to settle. Later
// Creates fail with ErrShutdown. Concurrent and repeated calls all return only
// once the first has finished.
func (m *Manager) CloseAll() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.shutdown = true
		views := m.views
		m.views = make(map[string]*entry)
		m.mu.Unlock()

		for _, e := range views {
			e.view.Close()
		}
		for _, e := range views {
			e.view.Wait()
		}
		m.log.Debug("all views closed", "count", len(views))
	})
}
