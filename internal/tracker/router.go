package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/autopeer-io/missionlens/internal/pkg/metrics"
	"github.com/autopeer-io/missionlens/pkg/log"
	"github.com/autopeer-io/missionlens/pkg/mission"
)

// Kind identifies the type of an inbound message.
type Kind string

const (
	KindSpec      Kind = "spec"
	KindTelemetry Kind = "telemetry"
)

var (
	ErrStopped     = errors.New("router stopped")
	ErrUnknownKind = errors.New("unknown message kind")
)

// DefaultQueueSize is the per-vehicle queue depth.
const DefaultQueueSize = 64

// Message is one decoded update for a vehicle.
type Message struct {
	Kind      Kind
	VehicleID string
	Spec      mission.Spec
	Telemetry mission.Telemetry
}

type handlerFunc func(ctx context.Context, t *Tracker, m Message) (Snapshot, bool)

type queue struct {
	ch   chan Message
	done chan struct{}
}

// Router delivers messages to trackers. Each vehicle has its own FIFO queue
// and worker, so updates for one vehicle are applied in arrival order while
// different vehicles proceed independently.
type Router struct {
	registry  *Registry
	sink      Sink
	queueSize int
	handlers  map[Kind]handlerFunc
	log       log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	queues map[string]*queue
	// draining holds vehicles whose Deregister has not finished. Dispatches
	// for them wait, then start over with a fresh tracker.
	draining map[string]chan struct{}
	stopped  bool
}

// NewRouter returns a Router feeding registry and publishing to sink.
func NewRouter(registry *Registry, sink Sink, queueSize int, logger log.Logger) *Router {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if sink == nil {
		sink = MultiSink{}
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Router{
		registry:  registry,
		sink:      sink,
		queueSize: queueSize,
		handlers: map[Kind]handlerFunc{
			KindSpec: func(ctx context.Context, t *Tracker, m Message) (Snapshot, bool) {
				return t.ApplySpec(ctx, m.Spec)
			},
			KindTelemetry: func(ctx context.Context, t *Tracker, m Message) (Snapshot, bool) {
				return t.ApplyTelemetry(ctx, m.Telemetry)
			},
		},
		log:    logger,
		ctx:    ctx,
		cancel: cancel,
		queues:   make(map[string]*queue),
		draining: make(map[string]chan struct{}),
	}
}

// Registry returns the registry the router feeds.
func (r *Router) Registry() *Registry { return r.registry }

// Dispatch enqueues m for its vehicle. It blocks while the vehicle's queue is
// full or the vehicle is being deregistered, until ctx is done.
func (r *Router) Dispatch(ctx context.Context, m Message) error {
	if _, ok := r.handlers[m.Kind]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}

	for {
		if err := r.ensureQueue(ctx, m.VehicleID); err != nil {
			return err
		}
		sent, err := r.enqueue(ctx, m)
		if sent || err != nil {
			return err
		}
		// deregistered between ensureQueue and enqueue
	}
}

func (r *Router) enqueue(ctx context.Context, m Message) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return false, ErrStopped
	}
	q, ok := r.queues[m.VehicleID]
	if !ok {
		return false, nil
	}

	select {
	case q.ch <- m:
		metrics.MessagesReceived.WithLabelValues(string(m.Kind)).Inc()
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// ensureQueue starts a worker for id unless one runs. The worker is only
// bound to the tracker the registry holds at that moment.
func (r *Router) ensureQueue(ctx context.Context, id string) error {
	for {
		r.mu.RLock()
		_, ok := r.queues[id]
		wait := r.draining[id]
		stopped := r.stopped
		r.mu.RUnlock()
		if stopped {
			return ErrStopped
		}
		if ok {
			return nil
		}
		if wait != nil {
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		t, err := r.registry.GetOrCreate(id)
		if err != nil {
			return err
		}

		r.mu.Lock()
		if r.stopped {
			r.mu.Unlock()
			return ErrStopped
		}
		if _, ok := r.queues[id]; ok {
			r.mu.Unlock()
			return nil
		}
		if cur, ok := r.registry.Get(id); !ok || cur != t {
			r.mu.Unlock()
			continue
		}
		q := &queue{ch: make(chan Message, r.queueSize), done: make(chan struct{})}
		r.queues[id] = q
		r.mu.Unlock()

		go r.work(t, q)
		return nil
	}
}

func (r *Router) work(t *Tracker, q *queue) {
	defer close(q.done)
	for m := range q.ch {
		snap, built := r.handlers[m.Kind](r.ctx, t, m)
		if !built {
			r.log.Debug("No mission spec yet, graph not built", "vehicle", m.VehicleID, "kind", m.Kind)
		}
		if err := r.sink.Publish(r.ctx, snap); err != nil {
			r.log.Error(err, "Failed to publish snapshot", "vehicle", m.VehicleID)
		}
	}
}

// Deregister drains and removes a vehicle's queue, forgets its tracker and
// clears its published state. Messages dispatched meanwhile wait and are
// then applied to a new tracker.
func (r *Router) Deregister(ctx context.Context, id string) error {
	r.mu.Lock()
	if wait, ok := r.draining[id]; ok {
		r.mu.Unlock()
		select {
		case <-wait:
			return ErrNotFound
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	q, ok := r.queues[id]
	if ok {
		delete(r.queues, id)
		close(q.ch)
	}
	known := r.registry.Deregister(id) || ok
	if !known {
		r.mu.Unlock()
		return ErrNotFound
	}
	drained := make(chan struct{})
	r.draining[id] = drained
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.draining, id)
		close(drained)
		r.mu.Unlock()
	}()

	if ok {
		select {
		case <-q.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := r.sink.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove published state of %s: %w", id, err)
	}
	return nil
}

// Start blocks until ctx is done and then stops the router.
func (r *Router) Start(ctx context.Context) error {
	r.log.Info("Router started", "queueSize", r.queueSize)
	<-ctx.Done()
	r.Stop()
	return nil
}

// Stop closes every queue and waits for pending messages to be applied.
// Later dispatches fail with ErrStopped.
func (r *Router) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	queues := make([]*queue, 0, len(r.queues))
	for id, q := range r.queues {
		close(q.ch)
		queues = append(queues, q)
		delete(r.queues, id)
	}
	r.mu.Unlock()

	for _, q := range queues {
		<-q.done
	}
	r.cancel()
	r.log.Info("Router stopped")
}
