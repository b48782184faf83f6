// Package registry tracks the set of pods a running Pod Manager process
// knows about and which one is currently active for single-pod CLI
// commands, adapted from the teacher's internal/radio.Manager (which kept
// an inventory of RF radios with capabilities and an active selection).
// Here the inventory entries are pod.Record plus the manager.Manager
// bound to them, keyed by pod ID, since a Pod Manager process may be
// mid-pairing with a new pod while still holding a handle on one already
// running.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/pod-control/pcm/internal/manager"
	"github.com/pod-control/pcm/internal/pod"
)

// Entry pairs a registered pod's record with the Manager orchestrating
// commands against it.
type Entry struct {
	Record   *pod.Record
	Manager  *manager.Manager
	LastSeen time.Time
}

// Registry manages pod inventory and active-pod selection.
type Registry struct {
	mu         sync.RWMutex
	pods       map[string]*Entry
	activePodID string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{pods: make(map[string]*Entry)}
}

// Register adds podRecord and its bound Manager to the inventory. The
// first pod registered becomes active automatically.
func (r *Registry) Register(podRecord *pod.Record, m *manager.Manager) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pods[podRecord.ID] = &Entry{Record: podRecord, Manager: m, LastSeen: time.Now()}
	if r.activePodID == "" {
		r.activePodID = podRecord.ID
	}
}

// SetActive selects podID as the active pod.
func (r *Registry) SetActive(podID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pods[podID]; !ok {
		return fmt.Errorf("registry: pod %s not registered", podID)
	}
	r.activePodID = podID
	return nil
}

// Active returns the active pod's Entry, or false if none is registered.
func (r *Registry) Active() (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.activePodID == "" {
		return nil, false
	}
	e, ok := r.pods[r.activePodID]
	return e, ok
}

// Get returns the Entry for podID.
func (r *Registry) Get(podID string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.pods[podID]
	return e, ok
}

// List returns every registered pod ID.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.pods))
	for id := range r.pods {
		ids = append(ids, id)
	}
	return ids
}

// Touch sets an entry's LastSeen to the current time. Nothing in this
// module calls it; the manager does not update LastSeen after exchanges.
func (r *Registry) Touch(podID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.pods[podID]; ok {
		e.LastSeen = time.Now()
	}
}

// Remove deregisters podID, clearing the active selection if it was
// active.
func (r *Registry) Remove(podID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pods, podID)
	if r.activePodID == podID {
		r.activePodID = ""
	}
}
