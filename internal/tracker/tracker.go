package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/missionlens/internal/pkg/metrics"
	"github.com/autopeer-io/missionlens/internal/status"
	"github.com/autopeer-io/missionlens/pkg/log"
	"github.com/autopeer-io/missionlens/pkg/mission"
	"github.com/autopeer-io/missionlens/pkg/mission/render"
)

var (
	ErrNotFound = errors.New("vehicle not tracked")
	ErrNoSpec   = errors.New("no mission spec received")
)

// Snapshot is the published state of one vehicle after an update.
type Snapshot struct {
	VehicleID string `json:"vehicleId"`
	Slot      int    `json:"slot"`

	// View is nil until a mission spec has been received.
	View     *render.View    `json:"graph,omitempty"`
	Status   *status.Summary `json:"status,omitempty"`
	Controls status.Controls `json:"controls"`
	LastStep *Step           `json:"lastStep,omitempty"`

	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	// Revision increases with every applied update.
	Revision uint64 `json:"revision"`
}

// Tracker holds the mission state of a single vehicle. Updates are applied
// one at a time; readers may call Snapshot concurrently.
type Tracker struct {
	id   string
	slot int

	builder mission.Builder
	adapter *render.Adapter
	clock   clock.PassiveClock
	log     log.Logger

	mu        sync.RWMutex
	spec      *mission.Spec
	progress  *Progress
	telemetry *mission.Telemetry
	snap      Snapshot
}

func newTracker(id string, slot int, builder mission.Builder, adapter *render.Adapter, clk clock.PassiveClock, logger log.Logger) *Tracker {
	now := clk.Now()
	return &Tracker{
		id:      id,
		slot:    slot,
		builder: builder,
		adapter: adapter,
		clock:   clk,
		log:     logger.WithValues("vehicle", id),
		snap: Snapshot{
			VehicleID: id,
			Slot:      slot,
			FirstSeen: now,
			LastSeen:  now,
		},
	}
}

// ID returns the vehicle identifier.
func (t *Tracker) ID() string { return t.id }

// Slot returns the vehicle's display slot.
func (t *Tracker) Slot() int { return t.slot }

// Spec returns a copy of the current mission spec.
func (t *Tracker) Spec() (mission.Spec, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.spec == nil {
		return mission.Spec{}, ErrNoSpec
	}
	return t.spec.Clone(), nil
}

// Snapshot returns the latest published state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}

// LastSeen returns the time of the last applied update.
func (t *Tracker) LastSeen() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.LastSeen
}

// ApplySpec replaces the mission spec and rebuilds the graph. Progress
// through the previous spec is discarded.
func (t *Tracker) ApplySpec(ctx context.Context, spec mission.Spec) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := spec.Clone()
	t.spec = &s
	t.progress = NewProgress(s, "")

	if undeclared := s.UndeclaredTargets(); len(undeclared) > 0 {
		t.log.Warn("Mission spec references undeclared states", "targets", undeclared)
		metrics.UndeclaredTargets.Add(float64(len(undeclared)))
	}
	t.log.Info("Mission spec applied", "states", len(s.States))

	t.rebuild(ctx, "spec")
	return t.snap, true
}

// ApplyTelemetry records tel and, when a spec is known, rebuilds the graph.
// It reports false when no graph could be built.
func (t *Tracker) ApplyTelemetry(ctx context.Context, tel mission.Telemetry) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.telemetry = &tel
	t.snap.Controls = status.Indicators(tel)
	if sum, ok := status.Summarize(tel, t.adapter.Palette().Color(t.id)); ok {
		t.snap.Status = &sum
	} else {
		t.snap.Status = nil
	}

	if t.spec == nil {
		t.touch()
		return t.snap, false
	}

	t.rebuild(ctx, "telemetry")
	return t.snap, true
}

func (t *Tracker) activity() string {
	if t.telemetry == nil {
		return ""
	}
	return t.telemetry.Activity
}

// rebuild resolves the graph for the current spec and activity. Callers hold mu.
func (t *Tracker) rebuild(ctx context.Context, trigger string) {
	g := t.builder.Resolve(*t.spec, t.activity())
	metrics.GraphRebuilds.WithLabelValues(trigger).Inc()
	if g.Synthetic != "" {
		metrics.DynamicStates.Inc()
		t.log.Debug("Activity not declared in mission", "activity", g.Activity, "node", g.Synthetic)
	}

	step, moved, err := t.progress.Advance(ctx, g.Highlighted)
	switch {
	case err != nil:
		t.log.Error(err, "Failed to advance mission progress", "to", g.Highlighted)
	case moved:
		t.snap.LastStep = &step
		if step.OffPlan {
			metrics.OffPlanTransitions.WithLabelValues(t.id).Inc()
			t.log.Info("Off-plan state change", "from", step.From, "to", step.To)
		} else {
			t.log.Debug("State change", "from", step.From, "to", step.To, "condition", step.Condition)
		}
	}

	view := t.adapter.View(t.id, g)
	t.snap.View = &view
	t.touch()
}

func (t *Tracker) touch() {
	t.snap.LastSeen = t.clock.Now()
	t.snap.Revision++
}
