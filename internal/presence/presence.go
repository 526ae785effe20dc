package presence

import (
	"sync"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/model"
)

// Resolver maps a source address to a country code. Lookups that fail map
// to "Unknown" and never fail the join.
type Resolver interface {
	Country(addr string) string
}

// Tracker maintains the current viewer set. Snapshot ordering matches
// insertion order. A record's lifetime is bounded by the owning
// connection's lifetime; the lifecycle coordinator calls Leave on
// disconnect.
type Tracker struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]model.ViewerInfo
}

// New creates an empty tracker
func New() *Tracker {
	return &Tracker{
		byID: make(map[string]model.ViewerInfo),
	}
}

// Join records a viewer. Joining an already-present id updates the record
// in place without changing its position.
func (t *Tracker) Join(connectionID, displayName, sourceAddr string, resolver Resolver) model.ViewerInfo {
	country := "Unknown"
	if resolver != nil {
		country = resolver.Country(sourceAddr)
	}

	info := model.ViewerInfo{
		ConnectionID: connectionID,
		DisplayName:  displayName,
		CountryCode:  country,
		SourceAddr:   sourceAddr,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.byID[connectionID]; !exists {
		t.order = append(t.order, connectionID)
	}
	t.byID[connectionID] = info

	return info
}

// Leave removes a viewer. Returns false when the id was not present, so a
// duplicate disconnect is a no-op.
func (t *Tracker) Leave(connectionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.byID[connectionID]; !exists {
		return false
	}
	delete(t.byID, connectionID)

	for i, id := range t.order {
		if id == connectionID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot returns the viewer count and the roster in insertion order
func (t *Tracker) Snapshot() (int, []model.ViewerInfo) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	viewers := make([]model.ViewerInfo, 0, len(t.order))
	for _, id := range t.order {
		viewers = append(viewers, t.byID[id])
	}
	return len(viewers), viewers
}
