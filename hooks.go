package fcupdater

import (
	"sync"

	"github.com/agentstation/fcupdater/pkg/differ"
)

// Hook function types for station events
type (
	// StationAddedHook is called for every station appended to the master
	StationAddedHook func(change differ.ChangeRecord)

	// StationUpdatedHook is called for every master station whose fields changed
	StationUpdatedHook func(change differ.ChangeRecord)

	// StationRemovedHook is called for every master station that is gone from all sources
	StationRemovedHook func(change differ.ChangeRecord)
)

// hooks manages event callbacks for master changes
type hooks struct {
	mu               sync.RWMutex
	onStationAdded   []StationAddedHook
	onStationUpdated []StationUpdatedHook
	onStationRemoved []StationRemovedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnStationAdded registers a callback for added stations
func (h *hooks) OnStationAdded(fn StationAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStationAdded = append(h.onStationAdded, fn)
}

// OnStationUpdated registers a callback for updated stations
func (h *hooks) OnStationUpdated(fn StationUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStationUpdated = append(h.onStationUpdated, fn)
}

// OnStationRemoved registers a callback for removed stations
func (h *hooks) OnStationRemoved(fn StationRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStationRemoved = append(h.onStationRemoved, fn)
}

// trigger replays a changeset through the registered hooks in change-log order.
func (h *hooks) trigger(cs *differ.Changeset) {
	if cs == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range cs.Updated {
		for _, hook := range h.onStationUpdated {
			hook(c)
		}
	}
	for _, c := range cs.Added {
		for _, hook := range h.onStationAdded {
			hook(c)
		}
	}
	for _, c := range cs.Removed {
		for _, hook := range h.onStationRemoved {
			hook(c)
		}
	}
}
