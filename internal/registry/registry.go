package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/model"
)

var (
	// ErrNotFound indicates the connection id is not registered
	ErrNotFound = errors.New("connection not found")

	// ErrRoleConflict indicates the connection already holds a different role
	ErrRoleConflict = errors.New("role already assigned")
)

// Connection is one live transport session. Role assignment is one-shot.
type Connection struct {
	ID          string
	Role        model.Role
	RemoteAddr  string
	ConnectedAt time.Time
}

// Registry tracks every live connection and its role. Pure bookkeeping,
// no network I/O. Room membership elsewhere is derived from the role held
// here, so there is no separate member list to drift out of sync.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		connections: make(map[string]*Connection),
	}
}

// Register adds a connection in the unassigned role. Registering an id that
// is already live is an invariant violation and returns ErrRoleConflict.
func (r *Registry) Register(id, remoteAddr string) (Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connections[id]; exists {
		return Connection{}, ErrRoleConflict
	}

	conn := &Connection{
		ID:          id,
		Role:        model.RoleUnassigned,
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
	}
	r.connections[id] = conn

	return *conn, nil
}

// SetRole assigns a role exactly once. Repeating the same assignment is a
// no-op; asking for a different role fails without side effects.
func (r *Registry) SetRole(id string, role model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.connections[id]
	if !exists {
		return ErrNotFound
	}

	if conn.Role == role {
		return nil
	}
	if conn.Role != model.RoleUnassigned {
		return ErrRoleConflict
	}

	conn.Role = role
	return nil
}

// Unregister removes a connection. Returns false when the id was not
// registered, which makes duplicate disconnect events harmless.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connections[id]; !exists {
		return false
	}
	delete(r.connections, id)
	return true
}

// Lookup returns a copy of the connection record
func (r *Registry) Lookup(id string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.connections[id]
	if !exists {
		return Connection{}, false
	}
	return *conn, true
}

// AllOfRole returns the ids of every connection holding the given role
func (r *Registry) AllOfRole(role model.Role) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.connections))
	for id, conn := range r.connections {
		if conn.Role == role {
			ids = append(ids, id)
		}
	}
	return ids
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.connections)
}
