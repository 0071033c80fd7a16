package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	snaps   map[string][]Snapshot
	removed []string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{snaps: make(map[string][]Snapshot)}
}

func (s *recordingSink) Publish(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.VehicleID] = append(s.snaps[snap.VehicleID], snap)
	return nil
}

func (s *recordingSink) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, id)
	return nil
}

func (s *recordingSink) get(id string) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snaps[id]
}

func TestRouterPerVehicleOrder(t *testing.T) {
	ctx := context.Background()
	sink := newRecordingSink()
	r := NewRouter(newTestRegistry(true), sink, 4, nil)

	for _, id := range []string{"Red", "Gold"} {
		require.NoError(t, r.Dispatch(ctx, Message{Kind: KindSpec, VehicleID: id, Spec: missionSpec()}))
	}
	for i := range 50 {
		for _, id := range []string{"Red", "Gold"} {
			activity := fmt.Sprintf("Unknown%d", i)
			require.NoError(t, r.Dispatch(ctx, Message{Kind: KindTelemetry, VehicleID: id, Telemetry: telemetry(id, activity, "")}))
		}
	}
	r.Stop()

	for _, id := range []string{"Red", "Gold"} {
		snaps := sink.get(id)
		require.Len(t, snaps, 51)
		assert.Empty(t, snaps[0].View.Highlighted)
		for i, snap := range snaps[1:] {
			assert.Equal(t, fmt.Sprintf("Unknown%d", i), snap.View.Activity)
			assert.Equal(t, uint64(i+2), snap.Revision)
		}
	}
}

func TestRouterRejects(t *testing.T) {
	ctx := context.Background()
	r := NewRouter(newTestRegistry(true), nil, 0, nil)

	err := r.Dispatch(ctx, Message{Kind: "bogus", VehicleID: "Red"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	err = r.Dispatch(ctx, Message{Kind: KindSpec, VehicleID: "Magenta"})
	assert.ErrorIs(t, err, ErrNotInFleet)

	r.Stop()
	err = r.Dispatch(ctx, Message{Kind: KindSpec, VehicleID: "Red"})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestRouterDeregister(t *testing.T) {
	ctx := context.Background()
	sink := newRecordingSink()
	r := NewRouter(newTestRegistry(true), sink, 0, nil)
	defer r.Stop()

	require.NoError(t, r.Dispatch(ctx, Message{Kind: KindTelemetry, VehicleID: "Lime", Telemetry: telemetry("Lime", "Hover", "")}))
	require.NoError(t, r.Deregister(ctx, "Lime"))

	// the queued message was applied before removal
	assert.Len(t, sink.get("Lime"), 1)
	assert.Equal(t, []string{"Lime"}, sink.removed)
	assert.Equal(t, 0, r.Registry().Len())

	assert.ErrorIs(t, r.Deregister(ctx, "Lime"), ErrNotFound)
}

func TestMultiSink(t *testing.T) {
	a, b := newRecordingSink(), newRecordingSink()
	boom := errors.New("boom")
	failing := SinkFuncs{PublishFunc: func(context.Context, Snapshot) error { return boom }}

	err := MultiSink{a, b}.Publish(context.Background(), Snapshot{VehicleID: "Red"})
	require.NoError(t, err)
	assert.Len(t, a.get("Red"), 1)
	assert.Len(t, b.get("Red"), 1)

	err = MultiSink{a, failing}.Publish(context.Background(), Snapshot{VehicleID: "Red"})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, MultiSink{failing}.Remove(context.Background(), "Red"))
}

// gatedSink blocks the first Publish until release is closed and records
// every call in order.
type gatedSink struct {
	mu      sync.Mutex
	events  []string
	first   bool
	entered chan struct{}
	release chan struct{}
}

func newGatedSink() *gatedSink {
	return &gatedSink{entered: make(chan struct{}), release: make(chan struct{})}
}

func (s *gatedSink) Publish(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	block := !s.first
	s.first = true
	s.mu.Unlock()
	if block {
		close(s.entered)
		<-s.release
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "publish "+snap.VehicleID)
	return nil
}

func (s *gatedSink) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "remove "+id)
	return nil
}

func (s *gatedSink) log() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func TestRouterDispatchDuringDeregister(t *testing.T) {
	ctx := context.Background()
	sink := newGatedSink()
	reg := newTestRegistry(true)
	r := NewRouter(reg, sink, 0, nil)
	defer r.Stop()

	require.NoError(t, r.Dispatch(ctx, Message{Kind: KindTelemetry, VehicleID: "Red", Telemetry: telemetry("Red", "Hover", "")}))
	<-sink.entered
	old, ok := reg.Get("Red")
	require.True(t, ok)

	deregistered := make(chan error, 1)
	go func() { deregistered <- r.Deregister(ctx, "Red") }()
	assert.Eventually(t, func() bool {
		_, ok := reg.Get("Red")
		return !ok
	}, 5*time.Second, 10*time.Millisecond)

	dispatched := make(chan error, 1)
	go func() {
		dispatched <- r.Dispatch(ctx, Message{Kind: KindTelemetry, VehicleID: "Red", Telemetry: telemetry("Red", "Land", "")})
	}()

	close(sink.release)
	require.NoError(t, <-deregistered)
	require.NoError(t, <-dispatched)
	require.NoError(t, r.Dispatch(ctx, Message{Kind: KindTelemetry, VehicleID: "Red", Telemetry: telemetry("Red", "Land", "")}))
	r.Stop()

	current, ok := reg.Get("Red")
	require.True(t, ok, "later telemetry registers the vehicle again")
	assert.NotSame(t, old, current)
	assert.Equal(t, []string{"publish Red", "remove Red", "publish Red", "publish Red"}, sink.log())
}
