// Package sessionregistry is the process-wide session-id -> *session.Session
// map that lets late SSE/WebSocket listeners attach to an in-flight
// session (SPEC_FULL.md §4.7), shaped the same way as the teacher's
// mutex-guarded agent/tool registries.
package sessionregistry

import (
	"sync"

	"github.com/harborlabs/boost/internal/boost/session"
)

// Registry implements session.Registry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// New returns an empty, process-wide session registry.
func New() *Registry {
	return &Registry{sessions: map[string]*session.Session{}}
}

// Register stores s under its own id. Called by Session.Serve before its
// module starts running.
func (r *Registry) Register(s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Unregister removes a session, called once its terminator has been sent.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get looks up a session by id for late listener attach.
func (r *Registry) Get(id string) (*session.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}
