package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/missionlens/internal/missionhub/core"
	"github.com/autopeer-io/missionlens/internal/pkg/metrics"
	"github.com/autopeer-io/missionlens/internal/tracker"
	"github.com/autopeer-io/missionlens/pkg/log"
)

const (
	defaultBufferSize = 5000
	// maxPending forces an early flush once this many vehicles are buffered.
	maxPending = 1000
)

type update struct {
	snap   tracker.Snapshot
	remove bool
}

var _ tracker.Sink = (*SnapshotPipeline)(nil)

// SnapshotPipeline archives snapshots to object storage. Updates are merged
// in memory, last write wins per vehicle, and flushed on a fixed interval so
// high rate telemetry costs one object per vehicle per interval.
type SnapshotPipeline struct {
	store    core.ObjectStore
	prefix   string
	interval time.Duration
	clock    clock.WithTicker

	inputCh chan update
	buffer  map[string]tracker.Snapshot
}

// NewSnapshotPipeline creates a pipeline writing under prefix.
func NewSnapshotPipeline(store core.ObjectStore, prefix string, interval time.Duration, clk clock.WithTicker) *SnapshotPipeline {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &SnapshotPipeline{
		store:    store,
		prefix:   prefix,
		interval: interval,
		clock:    clk,
		inputCh:  make(chan update, defaultBufferSize),
		buffer:   make(map[string]tracker.Snapshot),
	}
}

// Publish queues a snapshot. It never blocks; when the buffer is full the
// snapshot is dropped.
func (p *SnapshotPipeline) Publish(_ context.Context, snap tracker.Snapshot) error {
	p.push(update{snap: snap})
	return nil
}

// Remove discards anything still buffered for a vehicle. Archived objects are
// history and stay.
func (p *SnapshotPipeline) Remove(_ context.Context, vehicleID string) error {
	p.push(update{snap: tracker.Snapshot{VehicleID: vehicleID}, remove: true})
	return nil
}

func (p *SnapshotPipeline) push(u update) {
	select {
	case p.inputCh <- u:
	default:
		metrics.MessagesDropped.WithLabelValues("archive_full").Inc()
		log.Warn("Snapshot pipeline full, dropping update", "vehicle", u.snap.VehicleID)
	}
}

// Start runs the flush loop until ctx is done, then writes what is left.
func (p *SnapshotPipeline) Start(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info("Snapshot pipeline started", "interval", p.interval, "prefix", p.prefix)

	for {
		select {
		case u := <-p.inputCh:
			p.merge(u)
			if len(p.buffer) >= maxPending {
				p.flush(ctx)
			}

		case <-ticker.C():
			if len(p.buffer) > 0 {
				p.flush(ctx)
			}

		case <-ctx.Done():
			p.drain()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			p.flush(shutdownCtx)
			log.Info("Snapshot pipeline stopped")
			return nil
		}
	}
}

func (p *SnapshotPipeline) merge(u update) {
	if u.remove {
		delete(p.buffer, u.snap.VehicleID)
		return
	}
	p.buffer[u.snap.VehicleID] = u.snap
}

func (p *SnapshotPipeline) drain() {
	for {
		select {
		case u := <-p.inputCh:
			p.merge(u)
		default:
			return
		}
	}
}

func (p *SnapshotPipeline) flush(ctx context.Context) {
	if len(p.buffer) == 0 {
		return
	}
	start := p.clock.Now()

	count := 0
	for id, snap := range p.buffer {
		if err := p.write(ctx, snap); err != nil {
			log.Error(err, "Failed to archive snapshot", "vehicle", id)
			continue
		}
		count++
	}
	p.buffer = make(map[string]tracker.Snapshot)

	metrics.SnapshotFlushLatency.Observe(p.clock.Since(start).Seconds())
	log.Debug("Snapshot pipeline flushed", "count", count)
}

func (p *SnapshotPipeline) write(ctx context.Context, snap tracker.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return p.store.PutObject(ctx, ObjectKey(p.prefix, snap), data, "application/json")
}

// ObjectKey returns {prefix}/{vehicle}/{unix}-{uuid}.json.
func ObjectKey(prefix string, snap tracker.Snapshot) string {
	name := fmt.Sprintf("%d-%s.json", snap.LastSeen.Unix(), uuid.NewString())
	return path.Join(prefix, snap.VehicleID, name)
}
