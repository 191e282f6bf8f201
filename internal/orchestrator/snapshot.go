package orchestrator

import (
	"sync"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// Snapshot is a read-only view of an in-flight or finished run's context,
// adapted from original_source's debug_routes.py introspection endpoint —
// kept as an in-process accessor since HTTP/REST is an explicit non-goal
// (spec.md §1); external collaborators wrap this in their own surface.
type Snapshot struct {
	TaskID            string
	CurrentProvider   string
	CompletedPhases   []model.Phase
	RetryCount        int
	FallbackTriggered bool
	PublishedURL      string
}

type runRegistry struct {
	mu    sync.RWMutex
	runs  map[string]*runState
}

func newRunRegistry() *runRegistry {
	return &runRegistry{runs: make(map[string]*runState)}
}

func (r *runRegistry) put(rs *runState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[rs.pctx.TaskID] = rs
}

func (r *runRegistry) remove(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, taskID)
}

func (r *runRegistry) get(taskID string) (*runState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.runs[taskID]
	return rs, ok
}

// Snapshot returns the current state of a run that is still tracked
// (in-flight, or retained briefly after completion by the caller).
func (o *Orchestrator) Snapshot(taskID string) (Snapshot, bool) {
	if o.registry == nil {
		return Snapshot{}, false
	}
	rs, ok := o.registry.get(taskID)
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		TaskID:            rs.pctx.TaskID,
		CurrentProvider:   rs.pctx.CurrentProvider,
		CompletedPhases:   append([]model.Phase(nil), rs.pctx.CompletedPhases...),
		RetryCount:        rs.pctx.RetryCount,
		FallbackTriggered: rs.pctx.FallbackTriggered,
		PublishedURL:      rs.pctx.PublishedURL,
	}, true
}
