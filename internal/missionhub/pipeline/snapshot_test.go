package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/missionlens/internal/tracker"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) CheckBucket(context.Context) error { return nil }

func (s *fakeStore) PutObject(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contentType != "application/json" {
		panic("unexpected content type " + contentType)
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStore) snapshots() map[string]tracker.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]tracker.Snapshot)
	for key, data := range s.objects {
		var snap tracker.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			panic(err)
		}
		out[key] = snap
	}
	return out
}

func snapshot(id string, revision uint64) tracker.Snapshot {
	return tracker.Snapshot{VehicleID: id, Revision: revision, LastSeen: epoch}
}

func TestPipelineLastWriteWins(t *testing.T) {
	store := newFakeStore()
	p := NewSnapshotPipeline(store, "snapshots", time.Hour, clocktesting.NewFakeClock(epoch))

	ctx := context.Background()
	for rev := uint64(1); rev <= 3; rev++ {
		require.NoError(t, p.Publish(ctx, snapshot("Red", rev)))
	}
	require.NoError(t, p.Publish(ctx, snapshot("Gold", 1)))
	require.NoError(t, p.Publish(ctx, snapshot("Lime", 1)))
	require.NoError(t, p.Remove(ctx, "Lime"))

	stopped, cancel := context.WithCancel(ctx)
	cancel()
	require.NoError(t, p.Start(stopped))

	got := store.snapshots()
	require.Len(t, got, 2)
	revisions := map[string]uint64{}
	for key, snap := range got {
		assert.True(t, strings.HasPrefix(key, "snapshots/"+snap.VehicleID+"/1772366400-"), key)
		assert.True(t, strings.HasSuffix(key, ".json"), key)
		revisions[snap.VehicleID] = snap.Revision
	}
	assert.Equal(t, map[string]uint64{"Red": 3, "Gold": 1}, revisions)
}

func TestPipelineFlushesOnTick(t *testing.T) {
	store := newFakeStore()
	clk := clocktesting.NewFakeClock(epoch)
	p := NewSnapshotPipeline(store, "archive", 10*time.Second, clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	require.NoError(t, p.Publish(ctx, snapshot("Aqua", 7)))
	require.Eventually(t, func() bool {
		clk.Step(10 * time.Second)
		return len(store.snapshots()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Len(t, store.snapshots(), 1)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("snapshots", snapshot("Red", 1))
	assert.Regexp(t, `^snapshots/Red/1772366400-[0-9a-f-]{36}\.json$`, key)
}
