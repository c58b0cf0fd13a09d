package core

import (
	"slices"
	"sync"
)

// Registry tracks which users currently hold a live connection. It owns the
// user→client mapping for the lifetime of the process; the map keys double
// as the online set. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	clients map[int64]*Client
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[int64]*Client),
	}
}

// Admit records the client as the live connection for its user. If the user
// already had a connection, the stale one is closed and returned so its
// transport can shut down instead of leaking.
func (r *Registry) Admit(c *Client) (replaced *Client) {
	r.mu.Lock()
	replaced = r.clients[c.UserID]
	r.clients[c.UserID] = c
	r.mu.Unlock()

	if replaced != nil {
		replaced.Close()
	}
	return replaced
}

// Evict removes the mapping for the client's user, but only while it still
// points at this exact client. A reconnect admits a new client first, and
// the old transport's teardown must not evict the replacement.
func (r *Registry) Evict(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.clients[c.UserID]
	if !ok || current != c {
		return false
	}
	delete(r.clients, c.UserID)
	return true
}

// Lookup returns the live client for a user, if any.
func (r *Registry) Lookup(userID int64) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[userID]
	return c, ok
}

// Resolve returns the live clients for the given user IDs. Users without a
// connection are skipped; duplicate IDs resolve to a single client.
func (r *Registry) Resolve(userIDs []int64) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int64]struct{}, len(userIDs))
	clients := make([]*Client, 0, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if c, ok := r.clients[id]; ok {
			clients = append(clients, c)
		}
	}
	return clients
}

// SnapshotOnline returns a sorted copy of the currently online user IDs.
func (r *Registry) SnapshotOnline() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// All returns the currently admitted clients.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}
