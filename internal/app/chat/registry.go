/*
Package chat contains the core logic for real-time one-to-one message relay.

This file defines the Registry, the in-memory single source of truth for which
user identifiers currently hold a live connection. All operations are atomic
with respect to each other; none performs I/O while holding the lock.
*/
package chat

import (
	"sort"
	"sync"
)

// Registry maps user identifiers to their live connection. At most one
// connection is held per user identifier at any instant; registering an
// identifier that is already present displaces the previous connection.
type Registry struct {
	// mu protects concurrent access to the clients map.
	mu sync.RWMutex

	// clients maps user id to the single live connection for that user.
	clients map[string]*Client
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
	}
}

// Register inserts or overwrites the entry for userID and returns the
// displaced connection, if any, so the caller can close it outside the lock.
// Re-registering the handle that already holds the entry displaces nothing
// and returns nil.
func (r *Registry) Register(userID string, c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.clients[userID]
	if prev == c {
		return nil
	}

	r.clients[userID] = c
	return prev
}

// Lookup returns the live connection for userID, or nil. No side effects.
func (r *Registry) Lookup(userID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.clients[userID]
}

// Remove deletes the entry for userID. Removing an absent key is a no-op.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, userID)
}

// RemoveClient deletes the entry for c's user id only if it still points at c.
// It returns true if an entry was removed. The handle-equality guard keeps a
// stale session's cleanup from evicting the connection that replaced it.
func (r *Registry) RemoveClient(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.clients[c.userID]
	if !ok || current != c {
		return false
	}

	delete(r.clients, c.userID)
	return true
}

// Snapshot returns a consistent point-in-time view of the reachable user id
// set, sorted for stable presence frames.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// All returns the current set of live connections. Sends to them happen after
// the lock is released.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}

	return clients
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}
