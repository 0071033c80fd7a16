package tracker

import (
	"errors"
	"slices"
	"sync"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/missionlens/internal/pkg/metrics"
	"github.com/autopeer-io/missionlens/pkg/log"
	"github.com/autopeer-io/missionlens/pkg/mission"
	"github.com/autopeer-io/missionlens/pkg/mission/render"
)

var ErrNotInFleet = errors.New("vehicle is not on the fleet list")

// RegistryConfig configures vehicle admission and slot assignment.
type RegistryConfig struct {
	// Fleet lists known vehicles; a vehicle's slot is its index here.
	Fleet []string
	// StrictFleet rejects vehicles that are not on Fleet.
	StrictFleet bool

	Builder mission.Builder
	Adapter *render.Adapter
	Clock   clock.PassiveClock
	Logger  log.Logger
}

// Registry maps vehicle identifiers to trackers. Slots are deterministic:
// fleet vehicles take their fleet index, other vehicles take the next slot
// after the fleet in first-seen order and keep it across re-registration.
type Registry struct {
	cfg   RegistryConfig
	fleet map[string]int

	mu       sync.RWMutex
	trackers map[string]*Tracker
	overflow map[string]int
}

// NewRegistry returns an empty Registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	if cfg.Adapter == nil {
		cfg.Adapter = render.NewAdapter(nil)
	}

	fleet := make(map[string]int, len(cfg.Fleet))
	for i, id := range cfg.Fleet {
		if _, ok := fleet[id]; !ok {
			fleet[id] = i
		}
	}

	return &Registry{
		cfg:      cfg,
		fleet:    fleet,
		trackers: make(map[string]*Tracker),
		overflow: make(map[string]int),
	}
}

// Admits reports whether id may be tracked.
func (r *Registry) Admits(id string) bool {
	if id == "" {
		return false
	}
	if !r.cfg.StrictFleet {
		return true
	}
	_, ok := r.fleet[id]
	return ok
}

// Get returns the tracker for id.
func (r *Registry) Get(id string) (*Tracker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trackers[id]
	return t, ok
}

// GetOrCreate returns the tracker for id, registering it on first sight.
func (r *Registry) GetOrCreate(id string) (*Tracker, error) {
	if t, ok := r.Get(id); ok {
		return t, nil
	}
	if !r.Admits(id) {
		return nil, ErrNotInFleet
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.trackers[id]; ok {
		return t, nil
	}

	slot := r.slotLocked(id)
	t := newTracker(id, slot, r.cfg.Builder, r.cfg.Adapter, r.cfg.Clock, r.cfg.Logger)
	r.trackers[id] = t
	metrics.TrackedVehicles.Set(float64(len(r.trackers)))
	r.cfg.Logger.Info("Vehicle registered", "vehicle", id, "slot", slot)
	return t, nil
}

func (r *Registry) slotLocked(id string) int {
	if i, ok := r.fleet[id]; ok {
		return i
	}
	if i, ok := r.overflow[id]; ok {
		return i
	}
	i := len(r.cfg.Fleet) + len(r.overflow)
	r.overflow[id] = i
	return i
}

// Deregister forgets id. It reports whether id was registered.
func (r *Registry) Deregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trackers[id]; !ok {
		return false
	}
	delete(r.trackers, id)
	metrics.TrackedVehicles.Set(float64(len(r.trackers)))
	r.cfg.Logger.Info("Vehicle deregistered", "vehicle", id)
	return true
}

// List returns all trackers ordered by slot.
func (r *Registry) List() []*Tracker {
	r.mu.RLock()
	out := make([]*Tracker, 0, len(r.trackers))
	for _, t := range r.trackers {
		out = append(out, t)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Tracker) int { return a.slot - b.slot })
	return out
}

// Len returns the number of registered vehicles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trackers)
}

// SetPalette swaps the palette used for every vehicle's highlight color.
func (r *Registry) SetPalette(p render.Palette) {
	r.cfg.Adapter.SetPalette(p)
}
