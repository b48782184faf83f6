package repository

import (
	"context"
	"sync"

	"github.com/pod-control/pcm/internal/manager"
	"github.com/pod-control/pcm/internal/pod"
)

// MapRepository is an in-memory manager.Repository for tests and for
// running the manager without a configured database path.
type MapRepository struct {
	mu      sync.Mutex
	pods    map[string]*pod.Record
	results map[string][]*pod.Result
}

var _ manager.Repository = (*MapRepository)(nil)

// NewMapRepository returns an empty MapRepository.
func NewMapRepository() *MapRepository {
	return &MapRepository{
		pods:    make(map[string]*pod.Record),
		results: make(map[string][]*pod.Result),
	}
}

func (r *MapRepository) Save(ctx context.Context, podRecord *pod.Record, result *pod.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if podRecord != nil {
		copyRecord := *podRecord
		r.pods[podRecord.ID] = &copyRecord
	}
	if result != nil && podRecord != nil {
		r.results[podRecord.ID] = append(r.results[podRecord.ID], result)
	}
	return nil
}

// Pod returns the most recently saved record for id, if any.
func (r *MapRepository) Pod(id string) (*pod.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.pods[id]
	return rec, ok
}

// Results returns every result saved for id, in save order.
func (r *MapRepository) Results(id string) []*pod.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*pod.Result, len(r.results[id]))
	copy(out, r.results[id])
	return out
}
