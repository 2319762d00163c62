package auth

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type registered struct {
	m        *Manager
	lastUsed time.Time
}

// Registry hands out one Manager per browser, so every tab of a browser
// shares its auth state.
type Registry struct {
	api API
	log *zap.Logger

	mu       sync.Mutex
	managers map[string]*registered
}

func NewRegistry(client API, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{api: client, log: log, managers: make(map[string]*registered)}
}

// For returns the manager of the browser with the given client id.
func (r *Registry) For(clientID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.managers[clientID]
	if !ok {
		reg = &registered{m: NewManager(r.api, r.log.With(zap.String("client", clientID)))}
		r.managers[clientID] = reg
	}
	reg.lastUsed = time.Now()
	return reg.m
}

// Len returns the number of tracked browsers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}

// Prune drops managers that no open tab observes and that were not handed
// out within idle. Their state is restored from the session stores on the
// next visit.
func (r *Registry) Prune(idle time.Duration) {
	cutoff := time.Now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, reg := range r.managers {
		if reg.m.Subscribers() == 0 && reg.lastUsed.Before(cutoff) {
			delete(r.managers, id)
		}
	}
}
