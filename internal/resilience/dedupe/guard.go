// Package dedupe prevents creating the same tracking task twice within one run.
package dedupe

import "sync"

// Key identifies a task by its destination and title.
type Key struct {
	PortalID  string
	ProjectID string
	Title     string
}

// Guard is an in-memory set of keys whose task was created successfully.
// It lives for a single run and is never persisted.
type Guard struct {
	seen map[Key]struct{}
	mu   sync.RWMutex
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{
		seen: make(map[Key]struct{}),
	}
}

// IsDuplicate reports whether a task for key was already created.
func (g *Guard) IsDuplicate(key Key) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, exists := g.seen[key]
	return exists
}

// Record marks key as created. Call only after the downstream creation succeeded.
func (g *Guard) Record(key Key) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen[key] = struct{}{}
}

// Len returns the number of recorded keys.
func (g *Guard) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.seen)
}
